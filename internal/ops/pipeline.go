package ops

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/prompt"
	"github.com/hpungsan/focusbrief/internal/source"
)

// Limits are the input ceilings checked before any network call.
type Limits struct {
	MaxTextChars int
	MaxFileBytes int64
}

// Pipeline turns one reference into one capsule. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	Extractor Extractor
	Generator Generator

	// Store is optional; when nil capsules are returned but not persisted.
	Store Store

	Assembler *capsule.Assembler
	Limits    Limits
	Log       *logging.Logger

	// BatchConcurrency bounds Batch fan-out.
	BatchConcurrency int

	// Now stamps the prompt's current date. Defaults to time.Now.
	Now func() time.Time
}

// NewPipeline wires a pipeline from cfg.
func NewPipeline(cfg *config.Config, ex Extractor, gen Generator, store Store, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{
		Extractor: ex,
		Generator: gen,
		Store:     store,
		Assembler: capsule.NewAssembler(),
		Limits: Limits{
			MaxTextChars: cfg.MaxTextChars,
			MaxFileBytes: cfg.MaxFileBytes,
		},
		Log:              log,
		BatchConcurrency: cfg.BatchConcurrency,
		Now:              time.Now,
	}
}

// Create runs classify, extract, prompt, generate, validate and assemble
// for ref. It is all-or-nothing: on any error no capsule is returned or
// stored.
func (p *Pipeline) Create(ctx context.Context, ref source.Reference) (*capsule.Capsule, error) {
	ref, err := p.Validate(ref)
	if err != nil {
		return nil, err
	}

	cls, err := source.Classify(ref)
	if err != nil {
		return nil, err
	}
	log := p.logger().With("source_type", string(cls.SourceType), "strategy", string(cls.Strategy))

	content, err := p.Extractor.Extract(ctx, ref, cls)
	if err != nil {
		log.Warn("extraction failed", "source", ref.SourceLabel(), "error", err.Error())
		return nil, err
	}

	req := prompt.Build(content, p.now())
	raw, err := p.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	draft, err := capsule.ParseDraft(raw)
	if err != nil {
		log.Warn("unparseable model response", "raw_chars", capsule.CountChars(raw))
		return nil, err
	}

	fields := capsule.ApplyDefaults(draft, fallbackTitle(ref, content.Title))
	c := p.assembler().Assemble(fields, capsule.Provenance{
		Source:     ref.SourceLabel(),
		SourceType: cls.SourceType,
		Model:      p.Generator.Model(),
	})

	if lint := capsule.Lint(c); !lint.Valid {
		log.Info("capsule lint warnings", "id", c.ID, "warnings", lint.Warnings)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Store != nil {
		if err := p.Store.Save(ctx, c); err != nil {
			return nil, err
		}
	}

	log.Info("capsule created", "id", c.ID, "method", content.Method, "priority", string(c.Priority))
	return c, nil
}

// Validate enforces presence and size ceilings. It never touches the
// network. For files it also resolves the MIME type.
func (p *Pipeline) Validate(ref source.Reference) (source.Reference, error) {
	switch ref.Kind {
	case source.KindText:
		if strings.TrimSpace(ref.Text) == "" {
			return ref, errors.NewInvalidInput("content is required")
		}
		if n := capsule.CountChars(ref.Text); p.Limits.MaxTextChars > 0 && n > p.Limits.MaxTextChars {
			return ref, errors.NewPayloadTooLarge("text", int64(p.Limits.MaxTextChars), int64(n))
		}
		ref.Label = strings.TrimSpace(ref.Label)

	case source.KindURL:
		ref.URL = strings.TrimSpace(ref.URL)
		if ref.URL == "" {
			return ref, errors.NewInvalidInput("url is required")
		}

	case source.KindFile:
		if len(ref.Data) == 0 {
			return ref, errors.NewInvalidInput("file data is required")
		}
		if n := int64(len(ref.Data)); p.Limits.MaxFileBytes > 0 && n > p.Limits.MaxFileBytes {
			return ref, errors.NewPayloadTooLarge("file", p.Limits.MaxFileBytes, n)
		}
		ref.MIMEType = source.DetectMIME(ref.FileName, ref.Data, ref.MIMEType)
		ref.Label = strings.TrimSpace(ref.Label)

	default:
		return ref, errors.NewInvalidInput("kind must be one of: text, url, file")
	}
	return ref, nil
}

// fallbackTitle prefers the extractor's title, then the filename, then the
// URL's host and path.
func fallbackTitle(ref source.Reference, extracted string) string {
	if t := strings.TrimSpace(extracted); t != "" {
		return t
	}
	switch ref.Kind {
	case source.KindFile:
		return ref.FileName
	case source.KindURL:
		if u, err := url.Parse(ref.URL); err == nil && u.Host != "" {
			return strings.TrimSuffix(u.Host+u.Path, "/")
		}
	}
	return ""
}

func (p *Pipeline) logger() *logging.Logger {
	if p.Log == nil {
		return logging.Nop()
	}
	return p.Log
}

func (p *Pipeline) assembler() *capsule.Assembler {
	if p.Assembler == nil {
		return capsule.NewAssembler()
	}
	return p.Assembler
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
