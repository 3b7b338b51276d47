package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/and161185/attendance-client/internal/crypto/clientcrypto"
	"github.com/and161185/attendance-client/internal/errs"
)

// saltKey holds the Argon2id salt in the wrapped store, unencrypted.
const saltKey = "stateSalt"

// Sealed encrypts every value before handing it to the wrapped store.
// Entry names are bound as AAD so values cannot be swapped between keys.
type Sealed struct {
	inner  Store
	master []byte
}

var _ Store = (*Sealed)(nil)

// OpenSealed derives the state key from passphrase and the salt stored in inner,
// creating the salt on first use.
func OpenSealed(ctx context.Context, inner Store, passphrase string) (*Sealed, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed store: empty passphrase: %w", errs.ErrInvalidArgument)
	}
	salt, err := loadSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, master: clientcrypto.DeriveStateKey([]byte(passphrase), salt)}, nil
}

func loadSalt(ctx context.Context, inner Store) ([]byte, error) {
	raw, err := inner.Get(ctx, saltKey)
	if err == nil {
		salt, derr := base64.StdEncoding.DecodeString(raw)
		if derr == nil && len(salt) == clientcrypto.SaltLen {
			return salt, nil
		}
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	salt, err := clientcrypto.Rand(clientcrypto.SaltLen)
	if err != nil {
		return nil, err
	}
	if err := inner.Set(ctx, saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	blob, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("sealed %s: %w: %w", key, errs.ErrCorrupt, err)
	}
	k, err := clientcrypto.DeriveEntryKey(s.master, []byte(key))
	if err != nil {
		return "", err
	}
	pt, err := clientcrypto.Open(k, []byte(key), blob)
	if err != nil {
		return "", fmt.Errorf("sealed %s: %w: %w", key, errs.ErrCorrupt, err)
	}
	return string(pt), nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	k, err := clientcrypto.DeriveEntryKey(s.master, []byte(key))
	if err != nil {
		return err
	}
	blob, err := clientcrypto.Seal(k, []byte(key), []byte(value))
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(blob))
}

func (s *Sealed) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
