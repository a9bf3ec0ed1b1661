package sessionstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, IsNotFound(err))

	require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`)))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(v))

	ok, err := s.SetNX(ctx, "k", []byte(`{"a":2}`))
	require.NoError(t, err)
	require.False(t, ok)
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(v))

	require.NoError(t, s.Delete(ctx, "k"))
	ok, err = s.SetNX(ctx, "k", []byte(`{"a":2}`))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "k", []byte(`"abc"`)))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	v[1] = 'x'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`"abc"`), again)
}

func TestFile_ReplayAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.jsonl")

	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "intent", []byte(`{"payment_id":"PAY-1"}`)))
	ok, err := s.SetNX(ctx, "marker", []byte(`{"done":true}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Set(ctx, "gone", []byte(`1`)))
	require.NoError(t, s.Delete(ctx, "gone"))
	require.NoError(t, s.Close())

	s2, err := NewFile(path)
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.Get(ctx, "intent")
	require.NoError(t, err)
	require.JSONEq(t, `{"payment_id":"PAY-1"}`, string(v))

	ok, err = s2.SetNX(ctx, "marker", []byte(`{"done":true}`))
	require.NoError(t, err)
	require.False(t, ok, "replayed marker must still deny SetNX")

	_, err = s2.Get(ctx, "gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFile_SetNXDeniesSecondCaller(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewFile(filepath.Join(t.TempDir(), "session.jsonl"))
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.SetNX(ctx, "k", []byte(`1`))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.SetNX(ctx, "k", []byte(`2`))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFile_CorruptLogFailsLoudly(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte(`1`)))

	f := s.f
	_, err = f.Write([]byte("not json\n"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = NewFile(path)
	require.ErrorIs(t, err, ErrInternal)
}
