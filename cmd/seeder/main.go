package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/coursegraph"
	"github.com/poiesic/coursegraph/core"
)

// seedConcepts is a small systems-thinking glossary for local development.
var seedConcepts = []*core.Concept{
	{
		Name:              "system",
		Definition:        "A set of interacting parts that together produce behavior none of the parts produce alone.",
		Example:           "A school is a system of students, teachers, schedules and rules.",
		SourceType:        core.SourceTypeOfficial,
		CredibilityWeight: 1.0,
	},
	{
		Name:              "feedback loop",
		Definition:        "A circular chain of cause and effect in which a change feeds back to amplify or dampen itself.",
		Example:           "A thermostat turning the heater on and off to hold temperature.",
		SourceType:        core.SourceTypeOfficial,
		CredibilityWeight: 1.0,
	},
	{
		Name:              "stock",
		Definition:        "An accumulation of material or information that builds up or drains over time.",
		Example:           "Water in a bathtub, money in an account, trust in a team.",
		SourceType:        core.SourceTypeOfficial,
		CredibilityWeight: 1.0,
	},
	{
		Name:              "flow",
		Definition:        "The rate at which a stock changes, filling or draining it.",
		Example:           "Monthly income and spending are the flows that change a savings balance.",
		SourceType:        core.SourceTypeOfficial,
		CredibilityWeight: 1.0,
	},
	{
		Name:              "emergence",
		Definition:        "Behavior of the whole that is not present in any of its parts.",
		Example:           "A traffic jam emerges from individual drivers, none of whom want it.",
		SourceType:        core.SourceTypeOfficial,
		CredibilityWeight: 1.0,
	},
	{
		Name:              "leverage point",
		Definition:        "A place in a system where a small change produces a large shift in behavior.",
		Example:           "Changing an incentive rule often beats adding more resources.",
		SourceType:        core.SourceTypeTeacher,
		CredibilityWeight: 0.9,
	},
	{
		Name:              "delay",
		Definition:        "The time between an action and its visible effect, a common cause of oscillation.",
		Example:           "Hiring takes months to affect delivery, so teams over-hire then freeze.",
		SourceType:        core.SourceTypeTeacher,
		CredibilityWeight: 0.9,
	},
	{
		Name:              "mental model",
		Definition:        "The internal picture of how a system works that guides decisions, often unexamined.",
		Example:           "Assuming more study hours always means better grades.",
		SourceType:        core.SourceTypeStudent,
		CredibilityWeight: 0.6,
	},
}

var (
	dbPath   = flag.String("db", "./concepts_db", "path to BadgerDB database directory")
	seedFile = flag.String("src", "", "JSON file of concepts to seed instead of the built-in set")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// conceptFile matches the JSON export format of the course material.
type conceptFile struct {
	Concepts []struct {
		Name              string                         `json:"name"`
		Definition        string                         `json:"definition"`
		Example           string                         `json:"example"`
		SourceType        string                         `json:"source_type"`
		CredibilityWeight float32                        `json:"credibility_weight"`
		Vector            json.RawMessage                `json:"vector"`
		Chapters          map[string]core.ChapterContent `json:"chapters"`
	} `json:"concepts"`
}

func conceptsFromFile(filename string) ([]*core.Concept, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var file conceptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	concepts := make([]*core.Concept, 0, len(file.Concepts))
	for _, entry := range file.Concepts {
		sourceType, err := core.ParseSourceType(entry.SourceType)
		if err != nil {
			return nil, fmt.Errorf("concept %q: %w", entry.Name, err)
		}
		concepts = append(concepts, &core.Concept{
			Name:              entry.Name,
			Definition:        entry.Definition,
			Example:           entry.Example,
			SourceType:        sourceType,
			CredibilityWeight: entry.CredibilityWeight,
			// Malformed vectors decode to nil; the concept is then
			// embedded by the next index build instead.
			Vector:   core.DecodeVector(entry.Vector),
			Chapters: entry.Chapters,
		})
	}
	return concepts, nil
}

func main() {
	db, err := coursegraph.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	concepts := seedConcepts
	if *seedFile != "" {
		concepts, err = conceptsFromFile(*seedFile)
		if err != nil {
			panic(err)
		}
	}

	ctx := context.Background()
	added, err := db.ConceptStore().AddConcepts(ctx, concepts...)
	if err != nil {
		panic(err)
	}

	slog.Info("seeded concepts", "count", len(added), "db", *dbPath)
}
