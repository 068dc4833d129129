package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/malla/internal/curriculum"
)

// ErrCorrupt is returned when the stored entry cannot be decoded.
var ErrCorrupt = errors.New("progress snapshot is corrupt")

// KV is a string-keyed blob store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store keeps the whole id -> state mapping as one JSON object under a
// single key. It implements curriculum.StateStore.
type Store struct {
	KV  KV
	Key string
}

// New returns a Store writing under key.
func New(kv KV, key string) *Store {
	return &Store{KV: kv, Key: key}
}

// DefaultKey derives a stable entry name for a catalog source so two
// catalogs never overwrite each other's progress.
func DefaultKey(catalogSource string) string {
	src := strings.TrimSpace(catalogSource)
	return "progress:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String()
}

// Load returns the stored mapping. A missing entry is an empty mapping.
// Labels that are not recognised become Pending.
func (s *Store) Load(ctx context.Context) (map[curriculum.ID]curriculum.State, error) {
	raw, ok, err := s.KV.Get(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return map[curriculum.ID]curriculum.State{}, nil
	}
	return Decode(raw)
}

// Save replaces the stored entry with states.
func (s *Store) Save(ctx context.Context, states map[curriculum.ID]curriculum.State) error {
	raw, err := Encode(states)
	if err != nil {
		return err
	}
	if err := s.KV.Set(ctx, s.Key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.Key, err)
	}
	return nil
}

// Encode serialises a mapping. Keys are written in sorted order.
func Encode(states map[curriculum.ID]curriculum.State) (string, error) {
	out := make(map[string]string, len(states))
	for id, st := range states {
		out[string(id)] = st.String()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode progress: %w", err)
	}
	return string(data), nil
}

// Decode parses a serialised mapping.
func Decode(raw string) (map[curriculum.ID]curriculum.State, error) {
	var in map[string]string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	out := make(map[curriculum.ID]curriculum.State, len(in))
	for id, label := range in {
		st, ok := curriculum.ParseState(label)
		if !ok {
			st = curriculum.Pending
		}
		out[curriculum.ID(id)] = st
	}
	return out, nil
}
