// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package querycache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyKey = errors.New("cache key must have at least one part")

// Key identifies a query: a resource type followed by its ordered
// parameters, i.e. Key{"scans", "abc"} or Key{"scans", ListParams{...}}.
// Parts are compared by their JSON encoding so structs and maps with equal
// contents are the same key.
type Key []any

// Prefix reports whether k starts with every part of p.
func (k Key) Prefix(p Key) bool {
	kp, err := k.parts()
	if err != nil {
		return false
	}
	pp, err := p.parts()
	if err != nil {
		return false
	}
	return hasPrefix(kp, pp)
}

func (k Key) String() string {
	parts, err := k.parts()
	if err != nil {
		return fmt.Sprintf("%v", []any(k))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (k Key) parts() ([]string, error) {
	if len(k) == 0 {
		return nil, ErrEmptyKey
	}
	parts := make([]string, len(k))
	for i, p := range k {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("cache key part %d: %w", i, err)
		}
		parts[i] = string(data)
	}
	return parts, nil
}

// hashParts joins encoded parts. Encoded JSON never holds a raw NUL byte so
// the separator cannot collide.
func hashParts(parts []string) string {
	return strings.Join(parts, "\x00")
}

func hasPrefix(parts, prefix []string) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}
