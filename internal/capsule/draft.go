package capsule

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hpungsan/focusbrief/internal/errors"
)

// Draft is the model's proposed capsule content. Every field is optional:
// nil means the key was absent or carried a value of the wrong shape.
type Draft struct {
	Title          *string
	Summary        *string
	Actions        []string
	Priority       *string
	Sentiment      *string
	Tags           []string
	ReadTime       *float64
	KeyInsights    []string
	Deadline       *string
	ClipboardReady []string
	ExtractedText  *string
	MediaAnalysis  *string
}

// draftKeys lists accepted keys per field; the first entry is canonical.
var draftKeys = map[string][]string{
	"title":          {"title"},
	"summary":        {"summary"},
	"actions":        {"actions"},
	"priority":       {"priority"},
	"sentiment":      {"sentiment"},
	"tags":           {"tags"},
	"readTime":       {"readTime", "read_time"},
	"keyInsights":    {"keyInsights", "key_insights"},
	"deadline":       {"deadline"},
	"clipboardReady": {"clipboardReady", "clipboard_ready"},
	"extractedText":  {"extractedText", "extracted_text"},
	"mediaAnalysis":  {"mediaAnalysis", "media_analysis"},
}

// ParseDraft parses raw model output into a Draft. A surrounding Markdown
// code fence is stripped first. Anything that is not a JSON object yields
// an InvalidAIResponse error carrying the raw text.
func ParseDraft(raw string) (*Draft, error) {
	body := StripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, errors.NewInvalidAIResponse(raw, err)
	}
	if fields == nil {
		return nil, errors.NewInvalidAIResponse(raw, nil)
	}

	lookup := func(field string) json.RawMessage {
		for _, key := range draftKeys[field] {
			if v, ok := fields[key]; ok {
				return v
			}
		}
		return nil
	}

	return &Draft{
		Title:          decodeString(lookup("title")),
		Summary:        decodeString(lookup("summary")),
		Actions:        decodeStrings(lookup("actions")),
		Priority:       decodeString(lookup("priority")),
		Sentiment:      decodeString(lookup("sentiment")),
		Tags:           decodeStrings(lookup("tags")),
		ReadTime:       decodeNumber(lookup("readTime")),
		KeyInsights:    decodeStrings(lookup("keyInsights")),
		Deadline:       decodeString(lookup("deadline")),
		ClipboardReady: decodeStrings(lookup("clipboardReady")),
		ExtractedText:  decodeString(lookup("extractedText")),
		MediaAnalysis:  decodeString(lookup("mediaAnalysis")),
	}, nil
}

// StripCodeFence removes a leading ``` (optionally tagged json) and the
// matching trailing fence.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func decodeString(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// decodeStrings returns nil unless raw is an array. Non-string and blank
// elements are dropped.
func decodeStrings(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := decodeString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// decodeNumber accepts a JSON number or a string holding one.
func decodeNumber(raw json.RawMessage) *float64 {
	if raw == nil {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	if s := decodeString(raw); s != nil {
		if f, err := strconv.ParseFloat(*s, 64); err == nil {
			return &f
		}
	}
	return nil
}
