package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// These tests need a reachable Redis; set REDIS_TEST_ADDR to run them.
func newTestStore(t *testing.T) *TokenStore {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return NewTokenStore(client, "http://test.local")
}

func TestTokenStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Read(ctx); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if err := s.Save(ctx, "tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, err := s.Read(ctx); err != nil || got != "tok" {
		t.Fatalf("expected tok, got %q, %v", got, err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Read(ctx); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential after clear, got %v", err)
	}
}

func TestTokenStore_LedgerCapped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 15; i++ {
		if err := s.MarkProcessed(ctx, fmt.Sprintf("cs_%d", i)); err != nil {
			t.Fatalf("MarkProcessed: %v", err)
		}
	}
	ids, err := s.Processed(ctx)
	if err != nil {
		t.Fatalf("Processed: %v", err)
	}
	if len(ids) != domain.MaxProcessedPayments || ids[0] != "cs_14" {
		t.Fatalf("unexpected ledger %v", ids)
	}
}
