package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDraftStore keeps drafts in the invoice_drafts table as JSONB.
type PostgresDraftStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresDraftStore constructs a DraftStore backed by PostgreSQL.
// ttl <= 0 means DefaultDraftTTL.
func NewPostgresDraftStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &PostgresDraftStore{pool: pool, ttl: ttl}
}

func (s *PostgresDraftStore) Get(ctx context.Context, conversationID string) (InvoiceDraft, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT state
		FROM invoice_drafts
		WHERE conversation_id = $1 AND expires_at > NOW()`,
		conversationID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return InvoiceDraft{}, false, nil
	}
	if err != nil {
		return InvoiceDraft{}, false, fmt.Errorf("load draft %s: %w", conversationID, err)
	}

	var d InvoiceDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return InvoiceDraft{}, false, fmt.Errorf("decode draft %s: %w", conversationID, err)
	}
	return d, true, nil
}

func (s *PostgresDraftStore) Put(ctx context.Context, conversationID string, draft InvoiceDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", conversationID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO invoice_drafts (conversation_id, state, updated_at, expires_at)
		VALUES ($1, $2, NOW(), NOW() + make_interval(secs => $3))
		ON CONFLICT (conversation_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
		conversationID, raw, s.ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("save draft %s: %w", conversationID, err)
	}
	return nil
}

func (s *PostgresDraftStore) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM invoice_drafts WHERE conversation_id = $1`, conversationID); err != nil {
		return fmt.Errorf("delete draft %s: %w", conversationID, err)
	}
	return nil
}

// PurgeExpired removes rows whose expiry has passed and returns how many were dropped.
func (s *PostgresDraftStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM invoice_drafts WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}
