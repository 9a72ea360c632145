package search

import (
	"fmt"
	"strings"

	"github.com/poiesic/coursegraph/core"
)

// FormatResults renders a result list as markdown suitable for chat output.
func FormatResults(results []*core.SearchResult) string {
	if len(results) == 0 {
		return "Nothing found for your query."
	}

	var sb strings.Builder
	sb.WriteString("Search results:\n\n")
	for i, result := range results {
		relevance := float64(result.Similarity) * 100
		fmt.Fprintf(&sb, "%d. **%s** (relevance: %.1f%%)\n\n", i+1, result.Concept.Name, relevance)
		if result.Concept.Definition != "" {
			fmt.Fprintf(&sb, "   Definition: %s\n\n", result.Concept.Definition)
		}
		if result.Concept.Example != "" {
			fmt.Fprintf(&sb, "   Example: %s\n\n", result.Concept.Example)
		}
	}
	return sb.String()
}
