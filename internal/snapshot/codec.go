// Package snapshot persists and restores the full platform state. The
// store is serialized in one piece: a snapshot either applies completely
// or not at all, so a crash mid-save can never leave the platform with
// orphaned references.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/yourusername/veloportal/internal/store"
)

// Encode serializes a store dump to JSON.
func Encode(d *store.Dump) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a JSON snapshot back into a store dump.
func Decode(data []byte) (*store.Dump, error) {
	var d store.Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &d, nil
}
