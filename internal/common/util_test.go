package common

import (
	"strings"
	"testing"
)

// ---------- RandomString ----------

func TestRandomString_LengthAndAlphabet(t *testing.T) {
	const n = 6
	s, err := RandomString(Base36, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n {
		t.Fatalf("expected length %d, got %d", n, len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(Base36, r) {
			t.Fatalf("unexpected rune %q in %q", r, s)
		}
	}
}

func TestRandomString_ZeroSize(t *testing.T) {
	s, err := RandomString(Base36, 0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestRandomString_EntropyHint(t *testing.T) {
	a, _ := RandomString(Base36, 16)
	b, _ := RandomString(Base36, 16)
	if a == b {
		t.Logf("warning: two RandomString results are identical; extremely unlikely")
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

// ---------- BearerValue ----------

func TestBearerValue(t *testing.T) {
	if got := BearerValue("abc"); got != "Bearer abc" {
		t.Fatalf("unexpected header value %q", got)
	}
}
