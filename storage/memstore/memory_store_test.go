package memstore_test

import (
	"testing"

	"github.com/jrsteele09/fitcamp-session/storage"
	"github.com/jrsteele09/fitcamp-session/storage/memstore"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := memstore.New()

	_, err := s.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Set("a", "1"))
	v, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"))
	_, err = s.Get("a")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_Quota(t *testing.T) {
	s := memstore.New(memstore.WithQuota(10))

	require.NoError(t, s.Set("k", "12345"))
	require.ErrorIs(t, s.Set("other", "123456"), storage.ErrQuotaExceeded)

	// Replacing a value only counts the difference.
	require.NoError(t, s.Set("k", "123456789"))
	require.ErrorIs(t, s.Set("k", "1234567890"), storage.ErrQuotaExceeded)

	v, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, "123456789", v)

	// Deleting frees both the key and the value bytes.
	require.NoError(t, s.Delete("k"))
	require.ErrorIs(t, s.Set("other", "123456"), storage.ErrQuotaExceeded)
	require.NoError(t, s.Set("other", "12345"))
}
