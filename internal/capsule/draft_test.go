package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/focusbrief/internal/errors"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase tag", "```JSON {\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "\n\n  ```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDraft_FencedPartialObject(t *testing.T) {
	raw := "```json\n{\"title\":\"X\",\"summary\":\"Y\"}\n```"

	d, err := ParseDraft(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Title)
	assert.Equal(t, "X", *d.Title)
	require.NotNil(t, d.Summary)
	assert.Equal(t, "Y", *d.Summary)
	assert.Nil(t, d.Actions)
	assert.Nil(t, d.Priority)
	assert.Nil(t, d.ReadTime)

	f := ApplyDefaults(d, "")
	assert.Equal(t, "X", f.Title)
	assert.Equal(t, "Y", f.Summary)
	assert.Equal(t, []string{}, f.Actions)
	assert.Equal(t, []string{}, f.Tags)
	assert.Equal(t, PriorityMedium, f.Priority)
	assert.Equal(t, SentimentNeutral, f.Sentiment)
	assert.Equal(t, 30, f.ReadTime)
	assert.Nil(t, f.Deadline)
}

func TestParseDraft_ProseIsInvalid(t *testing.T) {
	raw := "Here is your summary!"

	_, err := ParseDraft(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAIResponse))

	bErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, raw, bErr.RawResponse)
}

func TestParseDraft_ObjectWrappedInProseIsInvalid(t *testing.T) {
	raw := `Sure! Here it is: {"title":"Budget"} Let me know if you need more.`

	_, err := ParseDraft(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAIResponse))
}

func TestParseDraft_NonObjectJSONIsInvalid(t *testing.T) {
	for _, raw := range []string{`["a","b"]`, `"just a string"`, `null`, `42`, ``} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDraft(raw)
			if !errors.Is(err, errors.ErrInvalidAIResponse) {
				t.Errorf("ParseDraft(%q) err = %v, want InvalidAIResponse", raw, err)
			}
		})
	}
}

func TestParseDraft_WrongShapesBecomeAbsent(t *testing.T) {
	raw := `{
		"title": 12,
		"actions": "call Ana",
		"tags": ["go", 3, "", " ai "],
		"priority": ["high"],
		"readTime": "abc",
		"deadline": null
	}`

	d, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Nil(t, d.Title)
	assert.Nil(t, d.Actions)
	assert.Equal(t, []string{"go", "ai"}, d.Tags)
	assert.Nil(t, d.Priority)
	assert.Nil(t, d.ReadTime)
	assert.Nil(t, d.Deadline)
}

func TestParseDraft_FullObject(t *testing.T) {
	raw := `{
		"title": "Q3 deadline",
		"summary": "Report due Friday.",
		"actions": ["Draft report", "Send to Ana"],
		"priority": "high",
		"sentiment": "urgent",
		"tags": ["work"],
		"readTime": 2,
		"keyInsights": ["Friday is final"],
		"deadline": "2026-10-16",
		"clipboardReady": ["ana@example.com"]
	}`

	d, err := ParseDraft(raw)
	require.NoError(t, err)

	f := ApplyDefaults(d, "")
	assert.Equal(t, "Q3 deadline", f.Title)
	assert.Equal(t, PriorityHigh, f.Priority)
	assert.Equal(t, SentimentUrgent, f.Sentiment)
	assert.Equal(t, 2, f.ReadTime)
	assert.Equal(t, []string{"Draft report", "Send to Ana"}, f.Actions)
	assert.Equal(t, []string{"Friday is final"}, f.KeyInsights)
	assert.Equal(t, []string{"ana@example.com"}, f.ClipboardReady)
	require.NotNil(t, f.Deadline)
	assert.Equal(t, "2026-10-16", *f.Deadline)
}

func TestParseDraft_SnakeCaseAliases(t *testing.T) {
	d, err := ParseDraft(`{"read_time": "7", "key_insights": ["k"]}`)
	require.NoError(t, err)
	require.NotNil(t, d.ReadTime)
	assert.Equal(t, 7.0, *d.ReadTime)
	assert.Equal(t, []string{"k"}, d.KeyInsights)
}
