package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/db"
	"github.com/hpungsan/focusbrief/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	SourceType string // optional filter
	Priority   string // optional filter
	Limit      int    // default: 20, max: 100
	Offset     int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []capsule.CapsuleSummary `json:"items"`
	Pagination Pagination               `json:"pagination"`
	Sort       string                   `json:"sort"`
}

// List retrieves capsule summaries, newest first, with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	filter, err := listFilter(input)
	if err != nil {
		return nil, err
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	capsules, total, err := db.List(ctx, database, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	summaries := make([]capsule.CapsuleSummary, 0, len(capsules))
	for _, c := range capsules {
		summaries = append(summaries, c.ToSummary())
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

func listFilter(input ListInput) (db.ListFilter, error) {
	var f db.ListFilter
	if st := capsule.Normalize(input.SourceType); st != "" {
		f.SourceType = capsule.SourceType(st)
		if !f.SourceType.Valid() {
			return f, errors.NewInvalidInput("unknown source_type: " + input.SourceType)
		}
	}
	switch p := capsule.Priority(capsule.Normalize(input.Priority)); p {
	case "":
	case capsule.PriorityHigh, capsule.PriorityMedium, capsule.PriorityLow:
		f.Priority = p
	default:
		return f, errors.NewInvalidInput("priority must be one of: high, medium, low")
	}
	return f, nil
}
