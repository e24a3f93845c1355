package db

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/zkpauth/internal/server/users"
)

func TestInMemoryRepositoryManager(t *testing.T) {
	m := NewInMemoryRepositoryManager()

	if m.Conn() != nil {
		t.Fatal("in-memory manager must not expose a sql.DB")
	}
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if m.Users() == nil {
		t.Fatal("Users repository must not be nil")
	}

	u := &users.User{UserName: "alice", Y1: []byte{2}, Y2: []byte{3}, ParamSet: "toy"}
	if _, err := m.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}
