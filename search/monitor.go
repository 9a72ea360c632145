package search

import (
	"github.com/poiesic/coursegraph/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	CacheHit(query string)
	ModeSelected(mode Mode)
	AfterIndexedQuery(results []*core.SearchResult, err error)
	AfterCandidateFetch(count int)
	AfterEncoding(encoded int)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                  {}
func (n *noopMonitor) CacheHit(_ string)                               {}
func (n *noopMonitor) ModeSelected(_ Mode)                             {}
func (n *noopMonitor) AfterIndexedQuery(_ []*core.SearchResult, _ error) {}
func (n *noopMonitor) AfterCandidateFetch(_ int)                       {}
func (n *noopMonitor) AfterEncoding(_ int)                             {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                   {}
