package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !hasher.Verify("correct horse battery staple", hash) {
		t.Error("Verify rejected the correct password")
	}
	if hasher.Verify("wrong password", hash) {
		t.Error("Verify accepted a wrong password")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}

func TestInvalidCostFallsBack(t *testing.T) {
	hasher := NewBcryptHasher(100)

	hash, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed with out-of-range cost: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("expected fallback to default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
