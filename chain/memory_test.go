package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetRoundtrip(t *testing.T) {
	s := NewMemory(0)

	data := []byte("opaque ciphertext")
	cid, err := s.Put(context.Background(), data)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), cid)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMemoryCidIsContentAddress(t *testing.T) {
	s := NewMemory(0)

	data := []byte("same bytes")
	want := sha256.Sum256(data)

	cid, err := s.Put(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), cid)

	// Same bytes, same address
	again, err := s.Put(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, cid, again)
}

func TestMemoryGetUnknown(t *testing.T) {
	s := NewMemory(0)

	_, err := s.Get(context.Background(), "no-such-cid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStatus(t *testing.T) {
	s := NewMemory(0)

	_, err := s.Put(context.Background(), []byte("aaaa"))
	require.NoError(t, err)
	_, err = s.Put(context.Background(), []byte("bbbbbb"))
	require.NoError(t, err)

	st, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Backend)
	assert.True(t, st.Connected)
	assert.EqualValues(t, 2, st.Blobs)
	assert.EqualValues(t, 10, st.Bytes)
}

func TestMemoryLatencyRespectsContext(t *testing.T) {
	s := NewMemory(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Put(ctx, []byte("slow"))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemory(0)

	data := []byte("immutable")
	cid, err := s.Put(context.Background(), data)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), cid)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(context.Background(), cid)
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}
