// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Kind is the type tag of a parameter field.
//
type Kind uint8

// Parameter kinds.
//
const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return "invalid"
}

// A Value is a single typed parameter value.
//
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// IntV returns an int Value, for use as a field default.
//
func IntV(i int64) *Value { v := Value{kind: KindInt, i: i}; return &v }

// FloatV returns a float Value, for use as a field default.
//
func FloatV(f float64) *Value { v := Value{kind: KindFloat, f: f}; return &v }

// StringV returns a string Value, for use as a field default.
//
func StringV(s string) *Value { v := Value{kind: KindString, s: s}; return &v }

// BoolV returns a bool Value, for use as a field default.
//
func BoolV(b bool) *Value { v := Value{kind: KindBool, b: b}; return &v }

// Kind returns the value's type tag.
//
func (v Value) Kind() Kind { return v.kind }

// Int returns the value as an int64.
//
func (v Value) Int() int64 { return v.i }

// Float returns the value as a float64. Int values convert.
//
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Str returns the value as a string.
//
func (v Value) Str() string { return v.s }

// Bool returns the value as a bool.
//
func (v Value) Bool() bool { return v.b }

// Equal reports value equality: same kind, same content.
//
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}

// A Param describes one field of a ParamClass: its name, kind,
// optional default and description.
//
type Param struct {
	Name    string
	Kind    Kind
	Default *Value
	Desc    string
}

// A ParamClass is an explicit, ordered parameter schema. It plays the
// role of a structured parameter container type: Generators and
// ExternalModules declare the class of parameters they accept, and
// values are validated against it at construction.
//
type ParamClass struct {
	name   string
	fields []Param
	index  map[string]int
}

// NewParamClass declares a parameter schema. It fails with a
// ConstructionError on an empty class name, unnamed or duplicate
// fields, an invalid field kind, or a default whose kind does not
// match its field.
//
func NewParamClass(name string, fields ...Param) (*ParamClass, error) {
	if name == "" {
		return nil, &ConstructionError{What: "paramclass", Reason: "missing class name"}
	}
	pc := &ParamClass{name: name, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if f.Name == "" {
			return nil, &ConstructionError{What: "paramclass " + name, Reason: "unnamed field"}
		}
		if f.Kind == KindInvalid || f.Kind > KindBool {
			return nil, &ConstructionError{What: "paramclass " + name, Reason: "invalid kind for field " + f.Name}
		}
		if _, ok := pc.index[f.Name]; ok {
			return nil, &ConstructionError{What: "paramclass " + name, Reason: "duplicate field " + f.Name}
		}
		if f.Default != nil && f.Default.kind != f.Kind {
			if !(f.Kind == KindFloat && f.Default.kind == KindInt) {
				return nil, &ConstructionError{
					What:   "paramclass " + name,
					Reason: "default kind " + f.Default.kind.String() + " does not match field " + f.Name,
				}
			}
		}
		pc.index[f.Name] = i
	}
	return pc, nil
}

// MustParamClass is like NewParamClass but panics on error. Intended
// for package-level schema declarations.
//
func MustParamClass(name string, fields ...Param) *ParamClass {
	pc, err := NewParamClass(name, fields...)
	if err != nil {
		panic(err)
	}
	return pc
}

// Name returns the class name.
//
func (pc *ParamClass) Name() string { return pc.name }

// Fields returns the ordered field list.
//
func (pc *ParamClass) Fields() []Param {
	return append([]Param(nil), pc.fields...)
}

// V is the raw input for parameter values, keyed by field name.
// Accepted value types are int, int64, float64, string and bool.
//
type V map[string]any

func convertValue(kind Kind, raw any) (Value, bool) {
	switch kind {
	case KindInt:
		switch x := raw.(type) {
		case int:
			return Value{kind: KindInt, i: int64(x)}, true
		case int64:
			return Value{kind: KindInt, i: x}, true
		}
	case KindFloat:
		switch x := raw.(type) {
		case float64:
			return Value{kind: KindFloat, f: x}, true
		case int:
			return Value{kind: KindFloat, f: float64(x)}, true
		case int64:
			return Value{kind: KindFloat, f: float64(x)}, true
		}
	case KindString:
		if x, ok := raw.(string); ok {
			return Value{kind: KindString, s: x}, true
		}
	case KindBool:
		if x, ok := raw.(bool); ok {
			return Value{kind: KindBool, b: x}, true
		}
	}
	return Value{}, false
}

// New validates vals against the schema and returns the resulting
// Params. Unknown fields, missing fields without a default and kind
// mismatches fail with a ConstructionError.
//
func (pc *ParamClass) New(vals V) (Params, error) {
	for k := range vals {
		if _, ok := pc.index[k]; !ok {
			return Params{}, &ConstructionError{
				What:   "paramclass " + pc.name,
				Reason: "unknown field " + k,
			}
		}
	}
	p := Params{class: pc, vals: make([]Value, len(pc.fields))}
	for i, f := range pc.fields {
		raw, ok := vals[f.Name]
		if !ok {
			if f.Default == nil {
				return Params{}, &ConstructionError{
					What:   "paramclass " + pc.name,
					Reason: "missing value for field " + f.Name,
				}
			}
			d := *f.Default
			if f.Kind == KindFloat && d.kind == KindInt {
				d = Value{kind: KindFloat, f: float64(d.i)}
			}
			p.vals[i] = d
			continue
		}
		v, ok := convertValue(f.Kind, raw)
		if !ok {
			return Params{}, &ConstructionError{
				What:   "paramclass " + pc.name,
				Reason: fmt.Sprintf("field %s: cannot use %T as %s", f.Name, raw, f.Kind),
			}
		}
		p.vals[i] = v
	}
	return p, nil
}

// MustNew is like New but panics on error.
//
func (pc *ParamClass) MustNew(vals V) Params {
	p, err := pc.New(vals)
	if err != nil {
		panic(err)
	}
	return p
}

// Params is a validated set of parameter values, either an instance of
// a ParamClass or a raw, class-less mapping (see RawParams). The zero
// Params means "no parameters given".
//
type Params struct {
	class *ParamClass
	names []string // raw params only, sorted
	vals  []Value
}

// RawParams builds a class-less parameter value set for ExternalModules
// declared with a generic mapping parameter type. Field kinds are
// inferred from the Go values.
//
func RawParams(vals V) (Params, error) {
	names := make([]string, 0, len(vals))
	for k := range vals {
		if k == "" {
			return Params{}, &ConstructionError{What: "raw params", Reason: "empty field name"}
		}
		names = append(names, k)
	}
	sort.Strings(names)
	p := Params{names: names, vals: make([]Value, len(names))}
	for i, k := range names {
		var v Value
		var ok bool
		switch vals[k].(type) {
		case int, int64:
			v, ok = convertValue(KindInt, vals[k])
		case float64:
			v, ok = convertValue(KindFloat, vals[k])
		case string:
			v, ok = convertValue(KindString, vals[k])
		case bool:
			v, ok = convertValue(KindBool, vals[k])
		}
		if !ok {
			return Params{}, &ConstructionError{
				What:   "raw params",
				Reason: fmt.Sprintf("field %s: unsupported value type %T", k, vals[k]),
			}
		}
		p.vals[i] = v
	}
	return p, nil
}

// MustRawParams is like RawParams but panics on error.
//
func MustRawParams(vals V) Params {
	p, err := RawParams(vals)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether p is the zero Params ("no parameters").
//
func (p Params) IsZero() bool {
	return p.class == nil && p.names == nil && p.vals == nil
}

// Class returns the ParamClass of p, or nil for raw and zero Params.
//
func (p Params) Class() *ParamClass { return p.class }

func (p Params) get(name string) (Value, error) {
	if p.class != nil {
		if i, ok := p.class.index[name]; ok {
			return p.vals[i], nil
		}
		return Value{}, errors.Errorf("paramclass %s has no field %s", p.class.name, name)
	}
	i := sort.SearchStrings(p.names, name)
	if i < len(p.names) && p.names[i] == name {
		return p.vals[i], nil
	}
	return Value{}, errors.Errorf("no parameter field %s", name)
}

// Get returns the value of the named field.
//
func (p Params) Get(name string) (Value, error) {
	return p.get(name)
}

func (p Params) must(name string, kind Kind) Value {
	v, err := p.get(name)
	if err != nil {
		panic(err)
	}
	if v.kind != kind && !(kind == KindFloat && v.kind == KindInt) {
		panic(errors.Errorf("parameter field %s is %s, not %s", name, v.kind, kind))
	}
	return v
}

// Int returns the named int field. It panics on a missing field or a
// kind mismatch: generator bodies read fields of their own declared
// class, so a failure here is a programming error.
//
func (p Params) Int(name string) int64 { return p.must(name, KindInt).Int() }

// Float returns the named float field. Int fields convert.
//
func (p Params) Float(name string) float64 { return p.must(name, KindFloat).Float() }

// Str returns the named string field.
//
func (p Params) Str(name string) string { return p.must(name, KindString).Str() }

// Bool returns the named bool field.
//
func (p Params) Bool(name string) bool { return p.must(name, KindBool).Bool() }

// Each calls f for every field in schema (or sorted-name) order.
//
func (p Params) Each(f func(name string, v Value)) {
	if p.class != nil {
		for i, fld := range p.class.fields {
			f(fld.Name, p.vals[i])
		}
		return
	}
	for i, n := range p.names {
		f(n, p.vals[i])
	}
}

// Equal reports value equality between parameter sets: same class (or
// both raw with the same fields) and equal values.
//
func (p Params) Equal(o Params) bool {
	if p.class != o.class || len(p.vals) != len(o.vals) || len(p.names) != len(o.names) {
		return false
	}
	for i := range p.names {
		if p.names[i] != o.names[i] {
			return false
		}
	}
	for i := range p.vals {
		if !p.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a short stable hash of the parameter values,
// suitable for building unique definition names.
//
func (p Params) Fingerprint() string {
	h := fnv.New32a()
	if p.class != nil {
		h.Write([]byte(p.class.name))
	}
	p.Each(func(name string, v Value) {
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(v.String()))
		h.Write([]byte{';'})
	})
	return fmt.Sprintf("%08x", h.Sum32())
}

// HasNoParams is the schema of parameterless generators.
//
var HasNoParams = MustParamClass("HasNoParams")

// NoParams is the sole value of HasNoParams.
//
var NoParams = HasNoParams.MustNew(nil)
