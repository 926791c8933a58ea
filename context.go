// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

// A Context carries ancillary state through one elaboration run.
// Generators registered with NewGeneratorCtx receive it and may use it
// to share technology settings or other run-scoped values. A Context
// must not be reused across elaboration runs.
//
type Context struct {
	vals map[string]any
}

// NewContext returns a fresh, empty Context.
//
func NewContext() *Context {
	return &Context{vals: make(map[string]any)}
}

// Set stores a value under the given key.
//
func (c *Context) Set(key string, v any) {
	c.vals[key] = v
}

// Value returns the value stored under the given key.
//
func (c *Context) Value(key string) (any, bool) {
	v, ok := c.vals[key]
	return v, ok
}
