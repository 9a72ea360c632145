package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content so that identical concepts map to the same ID.
type ID uint64

// IDFromName generates a deterministic ID from a concept name using BLAKE2b hashing.
// This ensures that identical names produce identical IDs.
func IDFromName(name string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(name))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceType identifies the provenance of a concept's content.
type SourceType int

const (
	// SourceTypeOfficial represents course material authored by the course itself.
	SourceTypeOfficial SourceType = iota + 1
	// SourceTypeTeacher represents material contributed by teachers.
	SourceTypeTeacher
	// SourceTypeStudent represents material contributed by students.
	SourceTypeStudent
)

// String returns the wire name of the source type ("official", "teacher", "student").
func (s SourceType) String() string {
	switch s {
	case SourceTypeOfficial:
		return "official"
	case SourceTypeTeacher:
		return "teacher"
	case SourceTypeStudent:
		return "student"
	default:
		return "unknown"
	}
}

// ParseSourceType converts a wire name back to a SourceType.
// Returns ErrInvalidSourceType for unrecognized names.
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "official":
		return SourceTypeOfficial, nil
	case "teacher":
		return SourceTypeTeacher, nil
	case "student":
		return SourceTypeStudent, nil
	default:
		return 0, ErrInvalidSourceType
	}
}

// ChapterContent holds a per-chapter override of a concept's definition and example.
// Some concepts are introduced with a simplified definition in early chapters.
type ChapterContent struct {
	Definition string
	Example    string
}

// Concept represents a node in the course knowledge graph.
// Concepts are created and updated by ingestion; the search subsystem
// treats them as read-only.
type Concept struct {
	Id                ID
	Name              string
	Definition        string
	Example           string
	SourceType        SourceType
	CredibilityWeight float32                   // Trust multiplier; 0 means unset, scored as 1.0
	Vector            []float32                 // Precomputed embedding (populated by the indexing pipeline)
	Chapters          map[string]ChapterContent // Optional per-chapter definition overrides
	InsertedAt        time.Time
	UpdatedAt         time.Time
}

// Credibility returns the effective credibility weight, defaulting to 1.0
// when the stored weight is unset or invalid.
func (c *Concept) Credibility() float32 {
	if c.CredibilityWeight <= 0 {
		return 1.0
	}
	return c.CredibilityWeight
}

// SearchResult represents a ranked concept match for a search query.
type SearchResult struct {
	Concept       *Concept
	Similarity    float32 // Raw cosine similarity against the query, in [0, 1]
	Credibility   float32 // Effective credibility weight used for ranking
	WeightedScore float32 // Similarity * Credibility; the final ranking key
}

// NewSearchResult builds a SearchResult for a concept with the given similarity,
// applying the concept's effective credibility weight.
func NewSearchResult(concept *Concept, similarity float32) *SearchResult {
	credibility := concept.Credibility()
	return &SearchResult{
		Concept:       concept,
		Similarity:    similarity,
		Credibility:   credibility,
		WeightedScore: similarity * credibility,
	}
}
