package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

const (
	tokenFile   = "token"
	paymentFile = "payments.json"
)

// FileStore keeps the credential and payment ledger under
// <baseDir>/<origin-slug>/. It implements ports.TokenStore and ports.PaymentLedger.
type FileStore struct {
	dir string
	log zerolog.Logger

	// serialises read-modify-write of the ledger within this process;
	// other processes are last-write-wins.
	mu sync.Mutex
}

// NewFileStore creates the origin directory (0700). An empty baseDir means
// ~/.storefront.
func NewFileStore(baseDir, origin string, log zerolog.Logger) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".storefront")
	}

	dir := filepath.Join(baseDir, Slug(origin))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	log.Debug().Str("dir", dir).Msg("file token store initialized")

	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	return s.writeAtomic(tokenFile, []byte(token))
}

func (s *FileStore) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNoCredential
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", domain.ErrNoCredential
	}
	return token, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(filepath.Join(s.dir, tokenFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (s *FileStore) MarkProcessed(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadPayments()
	if err != nil {
		return err
	}
	ids = pushCapped(ids, sessionID, domain.MaxProcessedPayments)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal payment ledger: %w", err)
	}
	return s.writeAtomic(paymentFile, data)
}

func (s *FileStore) IsProcessed(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadPayments()
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, sessionID), nil
}

func (s *FileStore) Processed(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPayments()
}

func (s *FileStore) loadPayments() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, paymentFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read payment ledger: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt ledger only weakens reload protection; start over.
		s.log.Warn().Err(err).Msg("discarding unreadable payment ledger")
		return nil, nil
	}
	return ids, nil
}

// writeAtomic writes to a fresh temp file in the same directory and renames
// it into place, so concurrent writers never share a temp file.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}
