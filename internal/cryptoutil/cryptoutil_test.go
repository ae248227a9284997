package cryptoutil

import (
	"strings"
	"testing"
)

func TestRandomStringLengthAndCharset(t *testing.T) {
	s := RandomString(256)
	if len(s) != 256 {
		t.Fatalf("expected 256 chars, got %d", len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(tokenCharset, c) {
			t.Fatalf("unexpected character %q", c)
		}
	}
}

func TestRandomStringUnique(t *testing.T) {
	a := RandomString(32)
	b := RandomString(32)
	if a == b {
		t.Fatal("two random strings should not collide")
	}
}

func TestRandomTokenLengthRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := RandomTokenLength()
		if n < MinTokenLength || n >= MaxTokenLength {
			t.Fatalf("token length %d out of range", n)
		}
	}
}

func TestSha512Hex(t *testing.T) {
	// Known SHA-512 of "abc".
	const want = "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
	got, err := Sha512Hex(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
