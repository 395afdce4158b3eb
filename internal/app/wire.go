package app

import (
	"context"
	"fmt"
	"path/filepath"

	"invoice-agent/internal/ai"
	"invoice-agent/internal/artifact"
	"invoice-agent/internal/config"
	"invoice-agent/internal/core"
	"invoice-agent/internal/db"
	"invoice-agent/internal/render"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stores are the persistence backends selected by configuration.
type Stores struct {
	Pool       *pgxpool.Pool
	References core.ReferenceStore
	Drafts     core.DraftStore
	Artifacts  artifact.Store
}

// OpenStores connects the draft, reference and artifact backends named in cfg.
// Close releases the database pool, if any.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	s := &Stores{}
	if cfg.DraftStore == "postgres" || cfg.ReferenceStore == "postgres" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		s.Pool = pool
	}

	switch cfg.ReferenceStore {
	case "postgres":
		s.References = core.NewReferenceService(s.Pool)
	default:
		s.References = core.NewMemoryReferenceStore()
	}

	switch cfg.DraftStore {
	case "postgres":
		s.Drafts = core.NewPostgresDraftStore(s.Pool, cfg.DraftTTL)
	default:
		s.Drafts = core.NewMemoryDraftStore(0, cfg.DraftTTL)
	}

	artifacts, err := openArtifacts(cfg.Artifact)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Artifacts = artifacts

	log.Info("stores ready",
		zap.String("references", cfg.ReferenceStore),
		zap.String("drafts", cfg.DraftStore),
		zap.String("artifacts", cfg.Artifact.Backend),
	)
	return s, nil
}

func openArtifacts(cfg config.ArtifactConfig) (artifact.Store, error) {
	switch cfg.Backend {
	case "s3":
		store, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		return store, nil
	default:
		store, err := artifact.NewFSStore(filepath.Clean(cfg.Root))
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		return store, nil
	}
}

// PurgeExpiredDrafts removes expired draft rows when drafts live in Postgres.
// The in-memory store expires entries on its own.
func (s *Stores) PurgeExpiredDrafts(ctx context.Context) (int64, error) {
	pg, ok := s.Drafts.(*core.PostgresDraftStore)
	if !ok {
		return 0, nil
	}
	return pg.PurgeExpired(ctx)
}

func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// NewAgent builds the OpenAI-backed agent over the configured reference store.
func NewAgent(cfg *config.Config, refs core.ReferenceStore, log *zap.Logger) (*ai.Agent, error) {
	return ai.NewAgent(ai.Config{
		APIKey:    cfg.OpenAI.APIKey,
		Model:     cfg.OpenAI.Model,
		BaseURL:   cfg.OpenAI.BaseURL,
		TaxPolicy: cfg.Tax,
	}, refs, log.Named("agent"))
}

// NewFromConfig wires the invoice service with the PDF renderer.
func NewFromConfig(cfg *config.Config, stores *Stores, agent Agent, log *zap.Logger) *InvoiceService {
	return NewInvoiceService(Deps{
		Agent:         agent,
		Drafts:        stores.Drafts,
		References:    stores.References,
		Artifacts:     stores.Artifacts,
		Renderer:      render.NewPDFRenderer(),
		Numberer:      core.NewNumberer(nil),
		Seller:        cfg.Seller,
		Tax:           cfg.Tax,
		PublicBaseURL: cfg.PublicBaseURL,
		AgentTimeout:  cfg.AgentTimeout,
		Logger:        log.Named("invoice"),
	})
}
