// Command class-remapper renames classes, fields and methods inside JVM
// jar/zip containers according to mapping documents.
//
// Usage:
//
//	class-remapper remap in.jar out.jar -m names.map --libs ./libs
//	class-remapper check names.map --against in.jar
//	class-remapper version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := execute(ctx, os.Args[1:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}
