package capsule

import (
	"math"
	"testing"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestApplyDefaults_NilDraft(t *testing.T) {
	f := ApplyDefaults(nil, "")

	if f.Title != UntitledPlaceholder {
		t.Errorf("Title = %q, want %q", f.Title, UntitledPlaceholder)
	}
	if f.Priority != PriorityMedium || f.Sentiment != SentimentNeutral {
		t.Errorf("enums = %q/%q, want medium/neutral", f.Priority, f.Sentiment)
	}
	if f.Actions == nil || f.Tags == nil || f.KeyInsights == nil || f.ClipboardReady == nil {
		t.Error("lists must be non-nil")
	}
}

func TestApplyDefaults_TitleFallback(t *testing.T) {
	tests := []struct {
		name     string
		title    *string
		fallback string
		want     string
	}{
		{"draft wins", strPtr("Model title"), "Headline", "Model title"},
		{"fallback label", nil, "  Headline  ", "Headline"},
		{"placeholder", nil, "   ", UntitledPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ApplyDefaults(&Draft{Title: tt.title}, tt.fallback)
			if f.Title != tt.want {
				t.Errorf("Title = %q, want %q", f.Title, tt.want)
			}
		})
	}
}

func TestApplyDefaults_Enums(t *testing.T) {
	tests := []struct {
		priority  string
		sentiment string
		wantP     Priority
		wantS     Sentiment
	}{
		{"high", "urgent", PriorityHigh, SentimentUrgent},
		{"LOW", "Positive", PriorityLow, SentimentPositive},
		{"medium", "negative", PriorityMedium, SentimentNegative},
		{"alta", "negativo", PriorityHigh, SentimentNegative},
		{"baja", "warning", PriorityLow, SentimentNegative},
		{"critical", "happy", PriorityMedium, SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.priority+"/"+tt.sentiment, func(t *testing.T) {
			f := ApplyDefaults(&Draft{Priority: strPtr(tt.priority), Sentiment: strPtr(tt.sentiment)}, "")
			if f.Priority != tt.wantP {
				t.Errorf("Priority = %q, want %q", f.Priority, tt.wantP)
			}
			if f.Sentiment != tt.wantS {
				t.Errorf("Sentiment = %q, want %q", f.Sentiment, tt.wantS)
			}
		})
	}
}

func TestApplyDefaults_ReadTime(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want int
	}{
		{"absent", nil, DefaultReadTime},
		{"integer", floatPtr(5), 5},
		{"rounds", floatPtr(2.6), 3},
		{"zero", floatPtr(0), DefaultReadTime},
		{"negative", floatPtr(-4), DefaultReadTime},
		{"nan", floatPtr(math.NaN()), DefaultReadTime},
		{"inf", floatPtr(math.Inf(1)), DefaultReadTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ApplyDefaults(&Draft{ReadTime: tt.in}, "")
			if f.ReadTime != tt.want {
				t.Errorf("ReadTime = %d, want %d", f.ReadTime, tt.want)
			}
		})
	}
}

// Whatever the draft holds, enums and read time stay in their legal domain.
func TestApplyDefaults_AlwaysLegal(t *testing.T) {
	raws := []string{
		`{}`,
		`{"priority": 3, "sentiment": {}, "readTime": []}`,
		`{"priority": "", "sentiment": "", "readTime": "-1"}`,
		`{"priority": "urgent", "sentiment": "high", "readTime": 0.2}`,
	}

	for _, raw := range raws {
		d, err := ParseDraft(raw)
		if err != nil {
			t.Fatalf("ParseDraft(%s): %v", raw, err)
		}
		f := ApplyDefaults(d, "")
		if _, ok := priorityAliases[string(f.Priority)]; !ok {
			t.Errorf("%s: illegal priority %q", raw, f.Priority)
		}
		if _, ok := sentimentAliases[string(f.Sentiment)]; !ok {
			t.Errorf("%s: illegal sentiment %q", raw, f.Sentiment)
		}
		if f.ReadTime < 1 {
			t.Errorf("%s: read time %d not positive", raw, f.ReadTime)
		}
	}
}
