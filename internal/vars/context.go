package vars

import (
	"reflect"
	"sort"
	"strings"
)

// Context is a case-insensitive ordered variable map built fresh per
// evaluation call. It records each entry's declared type so downstream
// casts can be checked, and derives a shape identifier used as the
// compiled-unit cache key prefix.
type Context struct {
	entries map[string]entry
	order   []string
	shapeID string
}

type entry struct {
	name  string // name as most recently declared
	value any
	typ   reflect.Type // nil for untyped nil values
}

// New creates an empty context.
func New() *Context {
	return &Context{entries: make(map[string]entry)}
}

// Build merges the global map then the local map into a fresh context.
// Local entries shadow global entries on case-insensitive name collision.
func Build(global, local map[string]any) *Context {
	c := New()
	c.Merge(global)
	c.Merge(local)
	return c
}

// Merge adds every entry of m, shadowing existing values on collision.
// Iteration order of m is not significant; first-declaration order is kept
// for Names.
func (c *Context) Merge(m map[string]any) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.ToLower(name)
		value := m[name]
		var typ reflect.Type
		if value != nil {
			typ = reflect.TypeOf(value)
		}
		if _, exists := c.entries[key]; !exists {
			c.order = append(c.order, key)
		}
		c.entries[key] = entry{name: name, value: value, typ: typ}
	}
	c.shapeID = ""
}

// Lookup returns the value bound to name, matched case-insensitively.
func (c *Context) Lookup(name string) (any, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// DeclaredType returns the recorded type of name, or nil for a nil value.
func (c *Context) DeclaredType(name string) (reflect.Type, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return e.typ, true
}

// Names returns the declared names in first-declaration order.
func (c *Context) Names() []string {
	names := make([]string, len(c.order))
	for i, key := range c.order {
		names[i] = c.entries[key].name
	}
	return names
}

// Len returns the number of entries.
func (c *Context) Len() int {
	return len(c.entries)
}

// ShapeID identifies the set of visible variable names and kinds. Two
// contexts with the same names bound to values of the same kind share a
// shape, so compiled units prepared against one are valid for the other.
func (c *Context) ShapeID() string {
	if c.shapeID != "" || len(c.entries) == 0 {
		return c.shapeID
	}
	pairs := make([]string, 0, len(c.entries))
	for key, e := range c.entries {
		kind := "nil"
		if e.typ != nil {
			kind = e.typ.Kind().String()
		}
		pairs = append(pairs, key+":"+kind)
	}
	sort.Strings(pairs)
	c.shapeID = strings.Join(pairs, ";")
	return c.shapeID
}
