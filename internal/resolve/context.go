package resolve

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"class-remapper/internal/classfile"
	"class-remapper/internal/metadata"
	"class-remapper/internal/table"
)

// DefaultCacheSize bounds the member lookup cache.
const DefaultCacheSize = 1 << 16

// Options configures a Context.
type Options struct {
	// CacheSize is the number of memoized member lookups; 0 means
	// DefaultCacheSize.
	CacheSize int
}

type cacheKey struct {
	method  bool
	inherit bool
	key     table.MemberKey
}

// Context resolves names against one set of tables and metadata.
type Context struct {
	tables *table.Tables
	store  *metadata.Store
	cache  *lru.Cache[cacheKey, string]
}

var _ classfile.Remapper = (*Context)(nil)

// NewContext builds a context. store may be nil, in which case no
// inheritance information is available.
func NewContext(tables *table.Tables, store *metadata.Store, opts Options) (*Context, error) {
	if tables == nil {
		return nil, errors.New("resolve: nil tables")
	}

	if store == nil {
		store = metadata.NewStore()
	}

	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, err
	}

	return &Context{tables: tables, store: store, cache: cache}, nil
}

// Tables returns the rule tables.
func (c *Context) Tables() *table.Tables {
	return c.tables
}

// MapClass translates an internal class name.
func (c *Context) MapClass(name string) string {
	return c.tables.Classes.Map(name)
}

// MapFieldName implements classfile.Remapper.
func (c *Context) MapFieldName(ref classfile.MemberRef) string {
	return c.ResolveField(ref.Owner, ref.Name, ref.Desc, c.access(ref, false))
}

// MapMethodName implements classfile.Remapper.
func (c *Context) MapMethodName(ref classfile.MemberRef) string {
	return c.ResolveMethod(ref.Owner, ref.Name, ref.Desc, c.access(ref, true))
}

// access returns the declared access of a reference's target when the
// store knows it. Unknown targets resolve like public members.
func (c *Context) access(ref classfile.MemberRef, method bool) uint16 {
	if ref.Declared {
		return ref.Access
	}

	if access, ok := c.store.Member(ref.Owner, ref.Name, ref.Desc, method); ok {
		return access
	}

	return 0
}

// ResolveField returns the new name of owner.name:desc.
func (c *Context) ResolveField(owner, name, desc string, access uint16) string {
	return c.resolveTop(c.tables.Fields, false, owner, name, desc, access)
}

// ResolveMethod returns the new name of owner.name:desc.
func (c *Context) ResolveMethod(owner, name, desc string, access uint16) string {
	return c.resolveTop(c.tables.Methods, true, owner, name, desc, access)
}

func inheritable(access uint16) bool {
	return access&(classfile.AccPrivate|classfile.AccStatic) == 0
}

func (c *Context) resolveTop(rules *table.MemberTable, method bool, owner, name, desc string, access uint16) string {
	key := cacheKey{
		method:  method,
		inherit: inheritable(access),
		key:     table.MemberKey{Owner: owner, Name: name, Desc: desc},
	}

	if v, ok := c.cache.Get(key); ok {
		return v
	}

	result := name
	if v, ok := c.resolve(rules, key.key, key.inherit, map[string]struct{}{}); ok {
		result = v
	}

	c.cache.Add(key, result)

	return result
}

// resolve reports false when neither owner nor any ancestor reachable
// through metadata has a rule.
func (c *Context) resolve(rules *table.MemberTable, key table.MemberKey, inherit bool, visited map[string]struct{}) (string, bool) {
	if mapped, ok := rules.Get(key); ok {
		return mapped.Name, true
	}

	if !inherit {
		return "", false
	}

	if _, seen := visited[key.Owner]; seen {
		return "", false
	}

	visited[key.Owner] = struct{}{}

	md, ok := c.store.Get(key.Owner)
	if !ok {
		return "", false
	}

	if md.SuperName != "" {
		if v, ok := c.resolve(rules, table.MemberKey{Owner: md.SuperName, Name: key.Name, Desc: key.Desc}, inherit, visited); ok {
			return v, true
		}
	}

	for _, iface := range md.Interfaces {
		if v, ok := c.resolve(rules, table.MemberKey{Owner: iface, Name: key.Name, Desc: key.Desc}, inherit, visited); ok {
			return v, true
		}
	}

	return "", false
}
