// Package chain implements the content-addressed blob store that holds
// uploaded ciphertext. Backends share a tiny put/get contract so the
// in-memory mock and the S3 implementation are interchangeable
package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrUnavailable = errors.New("chain store unavailable")
)

type Status struct {
	Backend   string `json:"backend"`
	Connected bool   `json:"connected"`
	Blobs     int64  `json:"blobs"`
	Bytes     int64  `json:"bytes"`
}

type Store interface {
	// Put stores data and returns its content address. Storing the same
	// bytes twice returns the same cid
	Put(ctx context.Context, data []byte) (cid string, err error)
	Get(ctx context.Context, cid string) ([]byte, error)
	Status(ctx context.Context) (*Status, error)
}

// ComputeCid returns the content address for a blob, the sha256 of the
// ciphertext hex encoded. Every backend uses the same addressing scheme so
// a cid computed before Put always matches the one Put returns
func ComputeCid(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
