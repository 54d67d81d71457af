package capsule

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple lowercase",
			input: "Hello World",
			want:  "hello world",
		},
		{
			name:  "trim whitespace",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\n  world",
			want:  "hello world",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "unicode characters",
			input: "  HÉLLO   WÖRLD  ",
			want:  "héllo wörld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace_KeepsCase(t *testing.T) {
	got := CollapseWhitespace("  Reunión\n\n  Q3   ")
	if got != "Reunión Q3" {
		t.Errorf("CollapseWhitespace = %q, want %q", got, "Reunión Q3")
	}
}

func TestCountChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "ascii only",
			input: "hello",
			want:  5,
		},
		{
			name:  "empty string",
			input: "",
			want:  0,
		},
		{
			name:  "unicode - emoji",
			input: "hello 👋",
			want:  7,
		},
		{
			name:  "unicode - accented",
			input: "café",
			want:  4,
		},
		{
			name:  "bytes vs runes verification",
			input: "日本語",
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountChars(tt.input)
			if got != tt.want {
				t.Errorf("CountChars(%q) = %d, want %d (len=%d bytes)", tt.input, got, tt.want, len(tt.input))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello..."},
		{"runes not bytes", "añoñoño", 3, "año..."},
		{"zero disables", "hello", 0, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
