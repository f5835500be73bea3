package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetEmptyValues(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetCurrentUser("   "); err == nil {
		t.Error("SetCurrentUser(\"   \") should return an error")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/testdb"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); err != ErrNotFound {
		t.Errorf("After DeleteConnectionString(), GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); err != ErrNotFound {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestCurrentUser(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetCurrentUser(); err != ErrNotFound {
		t.Errorf("GetCurrentUser() on empty keyring error = %v, want %v", err, ErrNotFound)
	}
	if err := SetCurrentUser(" alice "); err != nil {
		t.Fatalf("SetCurrentUser() failed: %v", err)
	}
	got, err := GetCurrentUser()
	if err != nil {
		t.Fatalf("GetCurrentUser() failed: %v", err)
	}
	if got != "alice" {
		t.Errorf("GetCurrentUser() = %q, want alice", got)
	}
	if err := DeleteCurrentUser(); err != nil {
		t.Fatalf("DeleteCurrentUser() failed: %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() should return true with mock keyring")
	}
}
