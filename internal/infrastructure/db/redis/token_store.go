package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// TokenStore keeps the credential and payment ledger in Redis so several
// console replicas serving the same origin share one session.
//
// Keys:
//
//	storefront:<origin>:token     string
//	storefront:<origin>:payments  list, newest first, trimmed to MaxProcessedPayments
type TokenStore struct {
	client redis.Cmdable
	prefix string
}

// NewTokenStore scopes all keys to origin.
func NewTokenStore(client redis.Cmdable, origin string) *TokenStore {
	return &TokenStore{client: client, prefix: "storefront:" + origin + ":"}
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.prefix+"token", token, 0).Err(); err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Read(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.prefix+"token").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNoCredential
		}
		return "", fmt.Errorf("redis read token: %w", err)
	}
	if token == "" {
		return "", domain.ErrNoCredential
	}
	return token, nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.prefix+"token").Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}

// MarkProcessed moves sessionID to the head of the ledger and trims it.
func (s *TokenStore) MarkProcessed(ctx context.Context, sessionID string) error {
	key := s.prefix + "payments"
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, key, 0, sessionID)
		p.LPush(ctx, key, sessionID)
		p.LTrim(ctx, key, 0, domain.MaxProcessedPayments-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis mark payment: %w", err)
	}
	return nil
}

func (s *TokenStore) IsProcessed(ctx context.Context, sessionID string) (bool, error) {
	ids, err := s.Processed(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, sessionID), nil
}

func (s *TokenStore) Processed(ctx context.Context) ([]string, error) {
	ids, err := s.client.LRange(ctx, s.prefix+"payments", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list payments: %w", err)
	}
	return ids, nil
}
