package retrieval

import "github.com/mediqa/mediqa/core"

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during retrieval.
type Monitor interface {
	Start(query string)
	QueryEnriched(enriched string, keywords int)
	AfterSearch(hits []Hit)
	Rejected(avgDistance float64, reason string)
	Accepted(avgDistance float64)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                 {}
func (n *noopMonitor) QueryEnriched(_ string, _ int)  {}
func (n *noopMonitor) AfterSearch(_ []Hit)            {}
func (n *noopMonitor) Rejected(_ float64, _ string)   {}
func (n *noopMonitor) Accepted(_ float64)             {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult) {}
