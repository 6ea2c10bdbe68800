package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Snapshotter persists the whole document. Save always rewrites it in full.
type Snapshotter interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// Encode renders the canonical document: two-space indent, trailing newline.
func Encode(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document. Empty input yields an empty snapshot.
func Decode(data []byte) (*Snapshot, error) {
	snap := NewSnapshot()
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.normalize()
	return snap, nil
}
