package search

// Mode identifies which search strategy produced a result set.
type Mode int

const (
	// ModeIndexed uses the store's vector index directly.
	ModeIndexed Mode = iota + 1

	// ModeHybrid scores candidates in the application, encoding any
	// concepts that lack precomputed vectors.
	ModeHybrid

	// ModeDegraded falls back to keyword matching when no embedder is
	// available.
	ModeDegraded
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIndexed:
		return "indexed"
	case ModeHybrid:
		return "hybrid"
	case ModeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
