package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
)

const capsuleColumns = `id, title, summary, actions_json, priority, sentiment, tags_json,
	read_time, key_insights_json, deadline, clipboard_json, extracted_text,
	media_analysis, source, source_type, model, created_at`

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	SourceType capsule.SourceType
	Priority   capsule.Priority
}

// Insert stores a new capsule in the database.
func Insert(ctx context.Context, db *sql.DB, c *capsule.Capsule) error {
	lists := make([]string, 0, 4)
	for _, items := range [][]string{c.Actions, c.Tags, c.KeyInsights, c.ClipboardReady} {
		encoded, err := encodeList(items)
		if err != nil {
			return errors.NewInternal(err)
		}
		lists = append(lists, encoded)
	}

	query := `INSERT INTO capsules (` + capsuleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, query,
		c.ID, c.Title, c.Summary, lists[0], string(c.Priority), string(c.Sentiment), lists[1],
		c.ReadTime, lists[2], toNullString(c.Deadline), lists[3], toNullString(c.ExtractedText),
		toNullString(c.MediaAnalysis), c.Source, string(c.SourceType), toNullString(optional(c.Model)),
		c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves a capsule by id.
func GetByID(ctx context.Context, db *sql.DB, id string) (*capsule.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules WHERE id = ?`

	c, err := scanCapsule(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return c, nil
}

// List returns capsules newest first, with the total count matching filter.
func List(ctx context.Context, db *sql.DB, filter ListFilter, limit, offset int) ([]*capsule.Capsule, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.SourceType != "" {
		where = append(where, "source_type = ?")
		args = append(args, string(filter.SourceType))
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM capsules`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + capsuleColumns + ` FROM capsules` + whereClause +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []*capsule.Capsule
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return out, total, nil
}

// Delete permanently removes a capsule.
func Delete(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM capsules WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCapsule scans a single row into a Capsule struct.
func scanCapsule(row rowScanner) (*capsule.Capsule, error) {
	var (
		c                                      capsule.Capsule
		actions, tags, insights, clipboard     string
		priority, sentiment, sourceType        string
		deadline, extractedText, mediaAnalysis sql.NullString
		model                                  sql.NullString
		createdAt                              int64
	)

	err := row.Scan(
		&c.ID, &c.Title, &c.Summary, &actions, &priority, &sentiment, &tags,
		&c.ReadTime, &insights, &deadline, &clipboard, &extractedText,
		&mediaAnalysis, &c.Source, &sourceType, &model, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Priority = capsule.Priority(priority)
	c.Sentiment = capsule.Sentiment(sentiment)
	c.SourceType = capsule.SourceType(sourceType)
	c.Deadline = fromNullString(deadline)
	c.ExtractedText = fromNullString(extractedText)
	c.MediaAnalysis = fromNullString(mediaAnalysis)
	if model.Valid {
		c.Model = model.String
	}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()

	for _, dst := range []struct {
		raw  string
		into *[]string
	}{
		{actions, &c.Actions},
		{tags, &c.Tags},
		{insights, &c.KeyInsights},
		{clipboard, &c.ClipboardReady},
	} {
		if *dst.into, err = decodeList(dst.raw); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// encodeList stores nil and empty lists alike as "[]".
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
