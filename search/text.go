package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/coursegraph/core"
)

const (
	// maxQueryTerms bounds how many query words participate in matching.
	maxQueryTerms = 5

	// minTermRunes is the rune length a word must exceed to count as a
	// search term. Counted in runes so non-ASCII queries work.
	minTermRunes = 3

	// keywordSimilarity is the fixed similarity assigned to keyword
	// matches, below typical strong semantic matches but above the
	// default threshold.
	keywordSimilarity = 0.7
)

// queryTerms extracts up to maxQueryTerms lowercased words longer than
// minTermRunes runes from the query.
func queryTerms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(word) <= minTermRunes {
			continue
		}
		terms = append(terms, word)
		if len(terms) == maxQueryTerms {
			break
		}
	}
	return terms
}

// textSearch is the degraded mode: case-insensitive substring matching of
// query terms against concept names and definitions. Matches receive a
// fixed similarity so downstream ranking still applies credibility weights.
func (e *Engine) textSearch(ctx context.Context, query string, params Params) []*core.SearchResult {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return []*core.SearchResult{}
	}

	concepts, err := e.store.FetchConcepts(ctx, params.SourceTypes, 0)
	if err != nil {
		e.logger.Error("error fetching concepts for keyword search", "err", err)
		return []*core.SearchResult{}
	}

	results := []*core.SearchResult{}
	for _, concept := range concepts {
		name := strings.ToLower(concept.Name)
		definition := strings.ToLower(concept.Definition)
		for _, term := range terms {
			if strings.Contains(name, term) || strings.Contains(definition, term) {
				results = append(results, core.NewSearchResult(concept, keywordSimilarity))
				break
			}
		}
	}

	sortResults(results)
	if len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results
}
