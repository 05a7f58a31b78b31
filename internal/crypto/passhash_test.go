package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != SaltLen {
		t.Fatalf("len=%d, want=%d", len(a), SaltLen)
	}
	b, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent salts are equal")
	}
}

func TestHashPassword_SaltAndPasswordMatter(t *testing.T) {
	t.Parallel()

	pw := []byte("compradora-2024")
	salt := []byte("0123456789abcdef")

	h1 := HashPassword(pw, salt)
	if len(h1) == 0 {
		t.Fatalf("empty hash")
	}
	if !bytes.Equal(h1, HashPassword(pw, salt)) {
		t.Fatalf("hash not deterministic for same input")
	}
	if bytes.Equal(h1, HashPassword(pw, []byte("fedcba9876543210"))) {
		t.Fatalf("hash should differ when salt differs")
	}
	if bytes.Equal(h1, HashPassword([]byte("otra-clave"), salt)) {
		t.Fatalf("hash should differ when password differs")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("clave segura")
	salt := []byte("salt-de-prueba!!")
	hash := HashPassword(pw, salt)

	if !VerifyPassword(pw, salt, hash) {
		t.Fatalf("expected match for correct password")
	}
	if VerifyPassword([]byte("incorrecta"), salt, hash) {
		t.Fatalf("expected mismatch for wrong password")
	}
	if VerifyPassword(pw, []byte("otro-salt-------"), hash) {
		t.Fatalf("expected mismatch for wrong salt")
	}
}
