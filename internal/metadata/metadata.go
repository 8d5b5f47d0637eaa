package metadata

import (
	"sync"

	"class-remapper/internal/classfile"
	"class-remapper/internal/common"
)

// Member is a declared field or method.
type Member struct {
	Name   string `msgpack:"n"`
	Desc   string `msgpack:"d"`
	Access uint16 `msgpack:"a"`
}

// ClassMetadata is what resolution needs to know about one class.
type ClassMetadata struct {
	Name       string   `msgpack:"name"`
	SuperName  string   `msgpack:"super,omitempty"`
	Interfaces []string `msgpack:"ifaces,omitempty"`
	Access     uint16   `msgpack:"access"`
	Fields     []Member `msgpack:"fields,omitempty"`
	Methods    []Member `msgpack:"methods,omitempty"`
}

// FromClass extracts metadata from a parsed class.
func FromClass(cf *classfile.ClassFile) *ClassMetadata {
	md := &ClassMetadata{
		Name:       cf.Name(),
		SuperName:  cf.SuperName(),
		Interfaces: cf.Interfaces(),
		Access:     cf.Access,
	}

	for _, f := range cf.Fields() {
		md.Fields = append(md.Fields, Member{Name: f.Name, Desc: f.Desc, Access: f.Access})
	}

	for _, m := range cf.Methods() {
		md.Methods = append(md.Methods, Member{Name: m.Name, Desc: m.Desc, Access: m.Access})
	}

	return md
}

// Member finds a declared field or method.
func (c *ClassMetadata) Member(name, desc string, method bool) (Member, bool) {
	list := c.Fields
	if method {
		list = c.Methods
	}

	for _, m := range list {
		if m.Name == name && m.Desc == desc {
			return m, true
		}
	}

	return Member{}, false
}

// Store maps internal class names to metadata. It is safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	classes map[string]*ClassMetadata
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{classes: make(map[string]*ClassMetadata)}
}

// Put records md, replacing any earlier metadata for the same name.
func (s *Store) Put(md *ClassMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classes[md.Name] = md
}

// PutAll records a batch in order.
func (s *Store) PutAll(mds []*ClassMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, md := range mds {
		s.classes[md.Name] = md
	}
}

// Get returns the metadata recorded for name.
func (s *Store) Get(name string) (*ClassMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	md, ok := s.classes[name]

	return md, ok
}

// Member returns the declared access of owner.name:desc, if known.
func (s *Store) Member(owner, name, desc string, method bool) (uint16, bool) {
	md, ok := s.Get(owner)
	if !ok {
		return 0, false
	}

	m, ok := md.Member(name, desc, method)

	return m.Access, ok
}

// Len returns the number of recorded classes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.classes)
}

// Names returns the recorded class names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return common.SortedKeys(s.classes)
}

// Reset drops everything.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classes = make(map[string]*ClassMetadata)
}
