package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3cret" {
		t.Fatal("digest must not equal the raw password")
	}
	if !hasher.Verify("s3cret", digest) {
		t.Fatal("expected correct password to verify")
	}
	if hasher.Verify("wrong", digest) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestPasswordHasherSaltsEachCall(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same input must differ")
	}
	if !hasher.Verify("same-input", first) || !hasher.Verify("same-input", second) {
		t.Fatal("both digests must verify against the original input")
	}
}

func TestPasswordHasherRejectsBogusCost(t *testing.T) {
	hasher := NewPasswordHasher(1000)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("expected fallback to default cost, got %d", hasher.cost)
	}
}
