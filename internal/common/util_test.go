package common

import (
	"errors"
	"fmt"
	"testing"
)

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

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if buf == nil {
		t.Fatalf("expected non-nil slice")
	}
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	identical := true
	for i := range a {
		if a[i] != b[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("head object: %w", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrapped ErrNotFound must match errors.Is")
	}
	if errors.Is(err, ErrTransientStore) {
		t.Fatalf("ErrNotFound must not match ErrTransientStore")
	}
}

func TestInvalidKeyIsDecryptionFailure(t *testing.T) {
	err := fmt.Errorf("key secret: %w", ErrInvalidKey)
	if !errors.Is(err, ErrDecryption) {
		t.Fatalf("ErrInvalidKey must match ErrDecryption")
	}
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("wrapped ErrInvalidKey must match errors.Is")
	}
}
