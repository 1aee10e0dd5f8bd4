package utils_test

import (
	"testing"

	"planr/internal/utils"
)

func TestHashPassword(t *testing.T) {
	hash, err := utils.HashPassword("secret")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if hash == "secret" {
		t.Fatal("expected hash to differ from the password")
	}
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := utils.HashPassword("secret")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	if !utils.CheckPasswordHash("secret", hash) {
		t.Fatal("expected the right password to match")
	}
	if utils.CheckPasswordHash("wrong", hash) {
		t.Fatal("expected a wrong password not to match")
	}
}
