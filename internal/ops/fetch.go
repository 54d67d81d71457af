package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/db"
	"github.com/hpungsan/focusbrief/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string

	IncludeText *bool // default: true (nil means default)
}

// Fetch retrieves a capsule by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*capsule.Capsule, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	c, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	if input.IncludeText != nil && !*input.IncludeText {
		c.ExtractedText = nil
	}
	return c, nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidInput("id is required")
	}
	return id, nil
}
