package ports

import "context"

// TokenStore persists the single bearer credential for one backend origin.
// Read returns domain.ErrNoCredential when nothing is stored; Clear is idempotent.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// PaymentLedger remembers the most recently confirmed payment sessions
// (bounded by domain.MaxProcessedPayments) so a reload does not confirm twice.
type PaymentLedger interface {
	MarkProcessed(ctx context.Context, sessionID string) error
	IsProcessed(ctx context.Context, sessionID string) (bool, error)
	Processed(ctx context.Context) ([]string, error)
}
