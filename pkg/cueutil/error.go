// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrInvalidDocument is the sentinel wrapped by DecodeError.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrFileTooLarge is the sentinel wrapped by SizeLimitError.
	ErrFileTooLarge = errors.New("file too large")
)

type (
	// Problem is one validation failure at a field path such as
	// "provides.path[1]".
	Problem struct {
		Path    string
		Message string
	}

	// DecodeError collects the problems found in one document.
	DecodeError struct {
		File     string
		Problems []Problem
	}

	// SizeLimitError is returned for documents above the configured size limit.
	SizeLimitError struct {
		File  string
		Size  int64
		Limit int64
	}
)

// Error implements the error interface.
func (e *DecodeError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Path == "" {
			lines = append(lines, p.Message)
			continue
		}
		lines = append(lines, p.Path+": "+p.Message)
	}
	if len(lines) == 1 {
		return e.File + ": " + lines[0]
	}
	return fmt.Sprintf("%s: %d problems:\n  %s", e.File, len(lines), strings.Join(lines, "\n  "))
}

// Unwrap returns ErrInvalidDocument so callers can use errors.Is for programmatic detection.
func (e *DecodeError) Unwrap() error { return ErrInvalidDocument }

// Error implements the error interface.
func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds the %d byte limit", e.File, e.Size, e.Limit)
}

// Unwrap returns ErrFileTooLarge so callers can use errors.Is for programmatic detection.
func (e *SizeLimitError) Unwrap() error { return ErrFileTooLarge }

// FormatError converts a CUE error into a *DecodeError with one Problem per
// underlying CUE error. Non-CUE errors are wrapped with the file name.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	out := &DecodeError{File: file}
	for _, e := range list {
		path := fieldPath(cueerrors.Path(e))
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		out.Problems = append(out.Problems, Problem{Path: path, Message: msg})
	}
	return out
}

// CheckFileSize fails with *SizeLimitError when data exceeds limit.
func CheckFileSize(data []byte, limit int64, file string) error {
	if size := int64(len(data)); size > limit {
		return &SizeLimitError{File: file, Size: size, Limit: limit}
	}
	return nil
}

// fieldPath renders ["provides", "path", "1"] as "provides.path[1]".
func fieldPath(parts []string) string {
	var sb strings.Builder
	for i, part := range parts {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}
