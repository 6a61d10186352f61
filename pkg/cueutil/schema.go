// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// Schema is a compiled CUE definition that documents are unified with.
	// It is safe for concurrent use.
	Schema struct {
		mu         sync.Mutex
		ctx        *cue.Context
		root       cue.Value
		definition string
	}

	// Result is a decoded document.
	Result[T any] struct {
		// Value is the decoded Go value.
		Value *T
		// Unified is the document after unification with the schema.
		Unified cue.Value
	}
)

// CompileSchema compiles source and looks up definition (e.g. "#Config").
func CompileSchema(source []byte, definition string) (*Schema, error) {
	ctx := cuecontext.New()
	compiled := ctx.CompileBytes(source)
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	root := compiled.LookupPath(cue.ParsePath(definition))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("schema definition %s: %w", definition, err)
	}
	return &Schema{ctx: ctx, root: root, definition: definition}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for package-level variables built from embedded schemas.
func MustCompileSchema(source []byte, definition string) *Schema {
	s, err := CompileSchema(source, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Definition returns the definition path documents are unified with.
func (s *Schema) Definition() string { return s.definition }

// Decode unifies data with the schema, validates it and decodes it into T.
// Validation failures are returned as *DecodeError.
func Decode[T any](s *Schema, data []byte, opts ...Option) (*Result[T], error) {
	o := newDecodeOptions(opts)
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}
	unified := s.root.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &Result[T]{Value: &out, Unified: unified}, nil
}

// DecodeFile reads path and decodes it. The file name defaults to path.
func DecodeFile[T any](s *Schema, path string, opts ...Option) (*Result[T], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	o := newDecodeOptions(opts)
	if info.Size() > o.maxFileSize {
		return nil, &SizeLimitError{File: path, Size: info.Size(), Limit: o.maxFileSize}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode[T](s, data, append([]Option{WithFilename(path)}, opts...)...)
}
