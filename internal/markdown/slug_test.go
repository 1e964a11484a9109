package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Two-Phase Commit!":      "two-phase-commit",
		"  leading/trailing  ":   "leading-trailing",
		"Hello World":            "hello-world",
		"API v2 -- Overview":     "api-v2-overview",
		"Ünïcödé":                "n-c-d",
		"!!!":                    "",
		"already-a-slug":         "already-a-slug",
		"CamelCase And 123 nums": "camelcase-and-123-nums",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Two-Phase Commit!", "a  b", "--x--", "Q&A: Part 2"} {
		once := Slugify(in)
		require.Equal(t, once, Slugify(once))
	}
}
