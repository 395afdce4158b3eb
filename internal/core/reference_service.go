package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type referenceService struct {
	pool   *pgxpool.Pool
	mu     sync.Mutex
	seeded bool
}

// NewReferenceService constructs a ReferenceStore backed by PostgreSQL
// (tables clients and inventory_items, see migrations).
func NewReferenceService(pool *pgxpool.Pool) ReferenceStore {
	return &referenceService{pool: pool}
}

// lazySeed runs EnsureSeeded before the first read or write of the process.
// A failed attempt is retried on the next call.
func (s *referenceService) lazySeed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}
	if err := s.EnsureSeeded(ctx); err != nil {
		return err
	}
	s.seeded = true
	return nil
}

func (s *referenceService) SearchClients(ctx context.Context, query string) ([]Client, error) {
	if err := s.lazySeed(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT name, email, address, gst_number, state, state_code
		FROM clients
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.Name, &c.Email, &c.Address, &c.GSTNumber, &c.State, &c.StateCode); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return filterClients(clients, query), nil
}

func (s *referenceService) SearchItems(ctx context.Context, query string) ([]InventoryItem, error) {
	if err := s.lazySeed(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT name, rate, hsn_code, unit
		FROM inventory_items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		var item InventoryItem
		if err := rows.Scan(&item.Name, &item.Rate, &item.HSNCode, &item.Unit); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return filterItems(items, query), nil
}

func (s *referenceService) SaveClient(ctx context.Context, c Client) (*Client, error) {
	c = c.normalized()
	if err := ValidateClient(c); err != nil {
		return nil, err
	}
	if err := s.lazySeed(ctx); err != nil {
		return nil, err
	}
	if err := insertClient(ctx, s.pool, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *referenceService) SaveItem(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	item = item.withDefaults()
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	if err := s.lazySeed(ctx); err != nil {
		return nil, err
	}
	if err := insertItem(ctx, s.pool, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *referenceService) UpdateClient(ctx context.Context, email string, c Client) (*Client, error) {
	c = c.normalized()
	if c.Email == "" {
		c.Email = email
	}
	if err := ValidateClient(c); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE clients
		SET name = $2, email = $3, address = $4, gst_number = $5, state = $6, state_code = $7
		WHERE lower(email) = $1`,
		clientKey(email), c.Name, c.Email, c.Address, c.GSTNumber, c.State, c.StateCode,
	)
	if err != nil {
		return nil, classify(fmt.Sprintf("update client %q", email), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("client %q: %w", email, ErrNotFound)
	}
	return &c, nil
}

func (s *referenceService) UpdateItem(ctx context.Context, name string, item InventoryItem) (*InventoryItem, error) {
	if blank(item.Name) {
		item.Name = name
	}
	item = item.withDefaults()
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE inventory_items
		SET name = $2, rate = $3, hsn_code = $4, unit = $5
		WHERE lower(name) = $1`,
		itemKey(name), item.Name, item.Rate, item.HSNCode, item.Unit,
	)
	if err != nil {
		return nil, classify(fmt.Sprintf("update item %q", name), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	return &item, nil
}

func (s *referenceService) DeleteClient(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE lower(email) = $1`, clientKey(email))
	if err != nil {
		return fmt.Errorf("delete client %q: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %q: %w", email, ErrNotFound)
	}
	return nil
}

func (s *referenceService) DeleteItem(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM inventory_items WHERE lower(name) = $1`, itemKey(name))
	if err != nil {
		return fmt.Errorf("delete item %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	return nil
}

// EnsureSeeded inserts the default records inside one transaction when both
// tables are empty.
func (s *referenceService) EnsureSeeded(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent seeders across processes.
	if _, err := tx.Exec(ctx, `LOCK TABLE clients, inventory_items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock reference tables: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM clients) OR EXISTS (SELECT 1 FROM inventory_items)`,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check seed: %w", err)
	}
	if exists {
		return nil
	}
	if err := seedTx(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *referenceService) ResetToSeed(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE TABLE clients, inventory_items RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate reference tables: %w", err)
	}
	if err := seedTx(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func seedTx(ctx context.Context, tx pgx.Tx) error {
	for _, c := range SeedClients() {
		if err := insertClient(ctx, tx, c); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for _, item := range SeedItems() {
		if err := insertItem(ctx, tx, item); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

func insertClient(ctx context.Context, db execer, c Client) error {
	_, err := db.Exec(ctx, `
		INSERT INTO clients (name, email, address, gst_number, state, state_code)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.Name, c.Email, c.Address, c.GSTNumber, c.State, c.StateCode,
	)
	if err != nil {
		return classify(fmt.Sprintf("create client %q", c.Email), err)
	}
	return nil
}

func insertItem(ctx context.Context, db execer, item InventoryItem) error {
	_, err := db.Exec(ctx, `
		INSERT INTO inventory_items (name, rate, hsn_code, unit)
		VALUES ($1, $2, $3, $4)`,
		item.Name, item.Rate, item.HSNCode, item.Unit,
	)
	if err != nil {
		return classify(fmt.Sprintf("create item %q", item.Name), err)
	}
	return nil
}

// classify maps a unique-key violation to ErrDuplicate.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
