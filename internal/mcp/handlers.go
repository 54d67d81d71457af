package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/ops"
	"github.com/hpungsan/focusbrief/internal/source"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	pipeline *ops.Pipeline
	log      *logging.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, pipeline *ops.Pipeline, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.Nop()
	}
	return &Handlers{db: db, cfg: cfg, pipeline: pipeline, log: log}
}

// Request types for each tool

// CreateRequest represents the arguments for create.
type CreateRequest struct {
	Kind        string `json:"kind"`
	Content     string `json:"content,omitempty"`
	SourceLabel string `json:"source_label,omitempty"`
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
}

// FetchRequest represents the arguments for fetch.
type FetchRequest struct {
	ID          string `json:"id"`
	IncludeText *bool  `json:"include_text,omitempty"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	SourceType string `json:"source_type,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// DeleteRequest represents the arguments for delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// Handler implementations

// HandleCreate handles the create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	var ref source.Reference
	switch source.Kind(input.Kind) {
	case source.KindText:
		ref = source.Reference{Kind: source.KindText, Text: input.Content, Label: input.SourceLabel}
	case source.KindURL:
		ref = source.Reference{Kind: source.KindURL, URL: input.URL}
	case source.KindFile:
		ref, err = ops.ReadLocalFile(input.Path, h.cfg.MaxFileBytes)
		if err != nil {
			return errorResult(err), nil
		}
	default:
		return errorResult(errors.NewInvalidInput("kind must be one of: text, url, file")), nil
	}

	c, err := h.pipeline.Create(ctx, ref)
	res := ops.NewResult(c, err)
	if !res.Success {
		return resultEnvelope(res, true), nil
	}
	return successResult(res)
}

// HandleFetch handles the fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	c, err := ops.Fetch(ctx, h.db, ops.FetchInput{ID: input.ID, IncludeText: input.IncludeText})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(c)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		SourceType: input.SourceType,
		Priority:   input.Priority,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	res := ops.NewResult(nil, err)
	if res.ErrorKind == errors.ErrInternal {
		res.Message = "an internal error occurred"
	}
	return resultEnvelope(res, true)
}

func resultEnvelope(res ops.Result, isError bool) *mcp.CallToolResult {
	content, _ := json.Marshal(res)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: isError,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
