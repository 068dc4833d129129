package progress

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/malla/internal/curriculum"
)

type mapKV struct {
	entries map[string]string
	err     error
}

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.entries == nil {
		m.entries = map[string]string{}
	}
	m.entries[key] = value
	return nil
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := &mapKV{}
	s := New(kv, "progress")

	in := map[curriculum.ID]curriculum.State{
		"1": curriculum.Completed,
		"2": curriculum.InProgress,
		"3": curriculum.Pending,
	}
	require.NoError(t, s.Save(ctx, in))
	require.Equal(t, `{"1":"completed","2":"in_progress","3":"pending"}`, kv.entries["progress"])

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestStoreMissingEntryIsEmpty(t *testing.T) {
	out, err := New(&mapKV{}, "k").Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestStoreCorruptEntry(t *testing.T) {
	kv := &mapKV{entries: map[string]string{"k": "{not json"}}
	_, err := New(kv, "k").Load(context.Background())
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestStoreBackendError(t *testing.T) {
	boom := errors.New("boom")
	s := New(&mapKV{err: boom}, "k")
	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Save(context.Background(), nil), boom)
}

func TestDecodeAcceptsLegacyLabels(t *testing.T) {
	out, err := Decode(`{"A":"aprobada","B":"cursando","C":"???"}`)
	require.NoError(t, err)
	require.Equal(t, curriculum.Completed, out["A"])
	require.Equal(t, curriculum.InProgress, out["B"])
	require.Equal(t, curriculum.Pending, out["C"])
}

func TestRegistryOverStore(t *testing.T) {
	ctx := context.Background()
	kv := &mapKV{entries: map[string]string{"k": `{"A":"completed"}`}}
	reg := curriculum.NewRegistry([]curriculum.Course{{ID: "A", Name: "A"}}, curriculum.WithStore(New(kv, "k")))
	require.NoError(t, reg.Load(ctx))
	require.Equal(t, curriculum.Completed, reg.State("A"))

	_, err := reg.Advance(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, `{"A":"pending"}`, kv.entries["k"])
}

func TestDefaultKeyIsStablePerSource(t *testing.T) {
	a := DefaultKey("materias.json")
	require.True(t, strings.HasPrefix(a, "progress:"))
	require.Equal(t, a, DefaultKey(" materias.json "))
	require.NotEqual(t, a, DefaultKey("otra.json"))
}
