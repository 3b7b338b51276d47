package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/and161185/attendance-client/internal/model"
	"github.com/and161185/attendance-client/internal/storage"
)

var testNow = time.Unix(1_700_000_000, 0)

func fixedClock() time.Time { return testNow }

// makeToken builds header.payload.sig with the given claims JSON encoded by enc.
func makeToken(claims string, enc *base64.Encoding) string {
	h := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return h + "." + enc.EncodeToString([]byte(claims)) + ".sig"
}

func tokenWithExp(exp int64) string {
	b, _ := json.Marshal(map[string]any{"sub": "5", "exp": exp})
	return makeToken(string(b), base64.RawURLEncoding)
}

// payload decodes JSON the same way the API client does.
func payload(t *testing.T, s string) model.AuthPayload {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var p model.AuthPayload
	if err := dec.Decode(&p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	return p
}

func newTestKeeper() (*Keeper, *storage.Memory) {
	st := storage.NewMemory()
	return NewKeeper(st, nil, WithClock(fixedClock)), st
}

// brokenStore fails every operation.
type brokenStore struct{}

var _ storage.Store = brokenStore{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) (string, error) { return "", errBroken }
func (brokenStore) Set(context.Context, string, string) error   { return errBroken }
func (brokenStore) Remove(context.Context, string) error        { return errBroken }
