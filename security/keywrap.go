package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

var ErrBadMasterKey = errors.New("master key must be 64 hex characters")

// KeyWrap seals per-file encryption keys with the server master key so a
// plaintext key never sits in the same row as its ciphertext pointer
type KeyWrap struct {
	aead cipher.AEAD
}

func NewKeyWrap(masterKey string) (*KeyWrap, error) {
	key, err := hex.DecodeString(masterKey)
	if err != nil || len(key) != 32 {
		return nil, ErrBadMasterKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &KeyWrap{aead: aead}, nil
}

// Wrap encrypts a client-supplied file key for storage. The nonce is
// prepended to the sealed blob and the whole thing is hex encoded
func (k *KeyWrap) Wrap(fileKey string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := k.aead.Seal(nonce, nonce, []byte(fileKey), nil)
	return hex.EncodeToString(sealed), nil
}

func (k *KeyWrap) Unwrap(wrapped string) (string, error) {
	raw, err := hex.DecodeString(wrapped)
	if err != nil {
		return "", err
	}

	ns := k.aead.NonceSize()
	if len(raw) < ns {
		return "", errors.New("wrapped key too short")
	}

	plain, err := k.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}
