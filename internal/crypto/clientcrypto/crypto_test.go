package clientcrypto

import (
	"bytes"
	"crypto/subtle"
	"testing"
)

func TestRand_LengthUniq(t *testing.T) {
	t.Parallel()
	const n = 48
	a, err := Rand(n)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, _ := Rand(n)
	if bytes.Equal(a, b) {
		t.Fatalf("Rand produced equal slices")
	}
}

func TestDeriveStateKey_DeterministicAndSaltDependent(t *testing.T) {
	t.Parallel()
	pw := []byte("secret-pass")
	s1 := []byte("salt-1")
	s2 := []byte("salt-2")
	k1 := DeriveStateKey(pw, s1)
	k2 := DeriveStateKey(pw, s1)
	if subtle.ConstantTimeCompare(k1, k2) != 1 {
		t.Fatalf("DeriveStateKey not deterministic")
	}
	if len(k1) != KeyLen {
		t.Fatalf("key len=%d, want %d", len(k1), KeyLen)
	}
	if subtle.ConstantTimeCompare(k1, DeriveStateKey(pw, s2)) != 0 {
		t.Fatalf("DeriveStateKey must change with salt")
	}
	if subtle.ConstantTimeCompare(k1, DeriveStateKey([]byte("other"), s1)) != 0 {
		t.Fatalf("DeriveStateKey must change with passphrase")
	}
}

func TestDeriveEntryKey_PerName(t *testing.T) {
	t.Parallel()
	master, _ := Rand(KeyLen)
	a, err := DeriveEntryKey(master, []byte("accessToken"))
	if err != nil {
		t.Fatalf("DeriveEntryKey: %v", err)
	}
	b, _ := DeriveEntryKey(master, []byte("accessToken"))
	c, _ := DeriveEntryKey(master, []byte("role"))
	if !bytes.Equal(a, b) {
		t.Fatalf("entry key must be deterministic")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("entry keys must differ per name")
	}
}

func TestSealOpen_RoundtripAndTamper(t *testing.T) {
	t.Parallel()
	key, _ := Rand(KeyLen)
	aad := []byte("user")
	blob, err := Seal(key, aad, []byte(`{"id":5}`))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	pt, err := Open(key, aad, blob)
	if err != nil || string(pt) != `{"id":5}` {
		t.Fatalf("Open: %q %v", pt, err)
	}

	if _, err := Open(key, []byte("role"), blob); err == nil {
		t.Fatalf("Open must fail with different AAD")
	}

	blob[len(blob)-1] ^= 0xff
	if _, err := Open(key, aad, blob); err == nil {
		t.Fatalf("Open must fail on tampered blob")
	}

	if _, err := Open(key, aad, []byte{1, 2, 3}); err == nil {
		t.Fatalf("Open must fail on short blob")
	}

	if _, err := Seal([]byte("short"), aad, []byte("x")); err == nil {
		t.Fatalf("Seal must reject bad key size")
	}
}
