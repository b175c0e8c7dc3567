// GamerCred Companion
// Copyright (c) 2026 The GamerCred Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GamerCred Companion.
//
// GamerCred Companion is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamerCred Companion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamerCred Companion.  If not, see <http://www.gnu.org/licenses/>.

// Package store is the companion's local key/value store. It holds the
// user's settings and the cached Discord credentials in a single bbolt
// file, with values encoded as JSON.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketKV = "kv"

const (
	KeySettings        = "settings"
	KeyDiscordToken    = "discord_token"
	KeyDiscordUserID   = "discord_user_id"
	KeyDiscordUsername = "discord_username"
	KeyDiscordAvatar   = "discord_avatar"
)

// CredentialKeys are written and cleared together: either all of them are
// present or none are.
var CredentialKeys = []string{
	KeyDiscordToken,
	KeyDiscordUserID,
	KeyDiscordUsername,
	KeyDiscordAvatar,
}

var ErrNotFound = errors.New("key not found")

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKV))
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucketKV, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.db.Path()
}

// Get decodes the value at key into out, or returns ErrNotFound.
func (s *Store) Get(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors pass through
	}
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketKV)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	var v string
	if err := s.Get(ctx, key, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.SetMany(ctx, map[string]any{key: value})
}

func encodeAll(values map[string]any) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		encoded[k] = data
	}
	return encoded, nil
}

func putAll(b *bbolt.Bucket, encoded map[string][]byte) error {
	for k, v := range encoded {
		if err := b.Put([]byte(k), v); err != nil {
			return fmt.Errorf("put %s: %w", k, err)
		}
	}
	return nil
}

func deleteAll(b *bbolt.Bucket, keys []string) error {
	for _, k := range keys {
		if err := b.Delete([]byte(k)); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// SetMany writes every value in one transaction, so either all keys are
// updated or none are.
func (s *Store) SetMany(ctx context.Context, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors pass through
	}
	encoded, err := encodeAll(values)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return putAll(tx.Bucket([]byte(bucketKV)), encoded)
	})
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// updateIf runs fn in a write transaction only when key currently holds
// want. The comparison and the write share the transaction.
func (s *Store) updateIf(
	ctx context.Context,
	key string,
	want any,
	fn func(b *bbolt.Bucket) error,
) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err //nolint:wrapcheck // context errors pass through
	}
	expected, err := json.Marshal(want)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}

	applied := false
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketKV))
		if !bytes.Equal(b.Get([]byte(key)), expected) {
			return nil
		}
		if err := fn(b); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("write store: %w", err)
	}
	return applied, nil
}

// SetManyIf writes values in one transaction if key still holds want, and
// reports whether it did.
func (s *Store) SetManyIf(ctx context.Context, key string, want any, values map[string]any) (bool, error) {
	encoded, err := encodeAll(values)
	if err != nil {
		return false, err
	}
	return s.updateIf(ctx, key, want, func(b *bbolt.Bucket) error {
		return putAll(b, encoded)
	})
}

// DeleteManyIf removes keys in one transaction if key still holds want,
// and reports whether it did.
func (s *Store) DeleteManyIf(ctx context.Context, key string, want any, keys ...string) (bool, error) {
	return s.updateIf(ctx, key, want, func(b *bbolt.Bucket) error {
		return deleteAll(b, keys)
	})
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.DeleteMany(ctx, key)
}

// DeleteMany removes every key in one transaction.
func (s *Store) DeleteMany(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors pass through
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return deleteAll(tx.Bucket([]byte(bucketKV)), keys)
	})
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
