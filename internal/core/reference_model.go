package core

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultHSNCode = "9983"
	DefaultUnit    = "Nos"
)

// InventoryItem is a catalog entry the assistant can bill for.
type InventoryItem struct {
	Name    string          `json:"name"`
	Rate    decimal.Decimal `json:"rate"`
	HSNCode string          `json:"hsnCode"`
	Unit    string          `json:"unit"`
}

// withDefaults fills the HSN/SAC code and unit when they were not supplied.
func (i InventoryItem) withDefaults() InventoryItem {
	i.Name = strings.TrimSpace(i.Name)
	if blank(i.HSNCode) {
		i.HSNCode = DefaultHSNCode
	}
	if blank(i.Unit) {
		i.Unit = DefaultUnit
	}
	return i
}

func (c Client) normalized() Client {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	return c
}

// clientKey and itemKey are the case-insensitive natural keys of reference records.
func clientKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
func itemKey(name string) string    { return strings.ToLower(strings.TrimSpace(name)) }

// ReferenceStore persists the clients and catalog items the assistant looks up
// while drafting. Clients are keyed by email, items by name, both
// case-insensitively.
type ReferenceStore interface {
	// SearchClients returns every client for a list query, otherwise the
	// clients whose name matches query.
	SearchClients(ctx context.Context, query string) ([]Client, error)

	// SearchItems is SearchClients for catalog items.
	SearchItems(ctx context.Context, query string) ([]InventoryItem, error)

	// SaveClient validates and creates a client. ErrDuplicate if the email exists.
	SaveClient(ctx context.Context, c Client) (*Client, error)

	// SaveItem validates and creates an item, defaulting HSN code and unit.
	SaveItem(ctx context.Context, item InventoryItem) (*InventoryItem, error)

	UpdateClient(ctx context.Context, email string, c Client) (*Client, error)
	UpdateItem(ctx context.Context, name string, item InventoryItem) (*InventoryItem, error)
	DeleteClient(ctx context.Context, email string) error
	DeleteItem(ctx context.Context, name string) error

	// EnsureSeeded loads the default records into an empty store. It is a
	// no-op when any record already exists.
	EnsureSeeded(ctx context.Context) error

	// ResetToSeed drops every record and reloads the defaults.
	ResetToSeed(ctx context.Context) error
}
