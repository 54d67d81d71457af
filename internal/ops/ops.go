// Package ops is the application layer: the capsule creation pipeline and
// the persistence-facing list/fetch/delete operations shared by the CLI,
// the MCP server and the HTTP API.
package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/db"
	"github.com/hpungsan/focusbrief/internal/extract"
	"github.com/hpungsan/focusbrief/internal/prompt"
	"github.com/hpungsan/focusbrief/internal/source"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Extractor turns a classified reference into model-ready content.
type Extractor interface {
	Extract(ctx context.Context, ref source.Reference, cls source.Classification) (*extract.Content, error)
}

// Generator is a single-attempt model invocation.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (string, error)
	Model() string
}

// Store receives finished capsules.
type Store interface {
	Save(ctx context.Context, c *capsule.Capsule) error
}

// DBStore persists capsules to sqlite.
type DBStore struct {
	DB *sql.DB
}

// Save inserts c.
func (s DBStore) Save(ctx context.Context, c *capsule.Capsule) error {
	return db.Insert(ctx, s.DB, c)
}
