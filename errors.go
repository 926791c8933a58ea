// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import "fmt"

// A SignatureError reports an invalid Generator registration: a nil
// generator function, a missing name or a nil parameter class.
//
type SignatureError struct {
	Gen    string // generator name, if known
	Reason string
}

func (e *SignatureError) Error() string {
	if e.Gen == "" {
		return "invalid generator signature: " + e.Reason
	}
	return "invalid signature for generator " + e.Gen + ": " + e.Reason
}

// A UsageError reports a misuse of the API: a bare call to a Generator
// descriptor, or an Elaborate call whose parameters do not match the
// kind of its top item.
//
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return e.Op + ": " + e.Reason
}

// A TypeMismatchError reports a value of the wrong type where a
// specific one was required: a generator returning no Module, a call
// parameter value of the wrong parameter class, or an instance
// referring to something that is neither a Module, a GenCall nor an
// ExternalModuleCall.
//
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// A ConstructionError reports an invalid entity construction, such as
// a Signal with a non-positive width, an unnamed ExternalModule port,
// or a parameter value failing schema validation.
//
type ConstructionError struct {
	What   string
	Reason string
}

func (e *ConstructionError) Error() string {
	return e.What + ": " + e.Reason
}

// A CycleError reports a generator or module hierarchy that references
// itself, directly or through the elaboration depth limit.
//
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "elaboration cycle detected"
	}
	s := "elaboration cycle detected: "
	for i, p := range e.Path {
		if i > 0 {
			s += " -> "
		}
		s += p
	}
	return s
}
