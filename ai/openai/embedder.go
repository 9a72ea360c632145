package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/coursegraph/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// It attempts the primary model first and falls back to the configured
// fallback model when the primary cannot be constructed. Only when both
// fail is the embedder considered unavailable.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-embedder")

	embedder, err := buildEmbedder(config.Host, config.Model)
	if err == nil {
		return &Embedder{embedder: embedder, model: config.Model, logger: logger}, nil
	}
	logger.Error("failed to load primary embedding model", "model", config.Model, "err", err)

	if config.FallbackModel == "" || config.FallbackModel == config.Model {
		return nil, ai.ErrEmbedderUnavailable
	}

	logger.Info("attempting fallback embedding model", "model", config.FallbackModel)
	embedder, err = buildEmbedder(config.Host, config.FallbackModel)
	if err != nil {
		logger.Error("failed to load fallback embedding model", "model", config.FallbackModel, "err", err)
		return nil, ai.ErrEmbedderUnavailable
	}

	return &Embedder{embedder: embedder, model: config.FallbackModel, logger: logger}, nil
}

// buildEmbedder constructs a langchaingo embedder for a single model.
// Uses "none" as token for local OpenAI-compatible services that don't
// require authentication.
func buildEmbedder(host, model string) (embeddings.Embedder, error) {
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}

	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// Model returns the identifier of the model actually loaded, which may be
// the fallback model.
func (e *Embedder) Model() string {
	return e.model
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	embeddings, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(embeddings) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return embeddings[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	embeddings, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	return embeddings, nil
}
