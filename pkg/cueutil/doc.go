// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against embedded schemas.
//
// A Schema is compiled once and then used to decode any number of documents:
//
//	//go:embed manifest_schema.cue
//	var schemaSource []byte
//
//	schema := cueutil.MustCompileSchema(schemaSource, "#Component")
//	result, err := cueutil.DecodeFile[Manifest](schema, path)
//	if err != nil {
//	    return err // *DecodeError listing every offending field path
//	}
//
// Decoding unifies the document with the schema definition, validates the
// result and decodes it through the struct's json tags.
package cueutil
