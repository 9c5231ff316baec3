package ai

import (
	"context"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
	"github.com/Lllllllleong/voicejournal/internal/gcp"
)

// Scorer produces the supportive reflection text for a transcript.
type Scorer interface {
	Score(ctx context.Context, transcript string) (string, error)
}

// GeminiScorer scores transcripts with the pre-configured Vertex model.
type GeminiScorer struct {
	vertex *gcp.VertexClient
}

// NewGeminiScorer wraps an existing Vertex client.
func NewGeminiScorer(vertex *gcp.VertexClient) *GeminiScorer {
	return &GeminiScorer{vertex: vertex}
}

func (s *GeminiScorer) Score(ctx context.Context, transcript string) (string, error) {
	resp, err := s.vertex.ScorerModel.GenerateContent(ctx,
		genai.Text(gcp.ScorerUserPrompt),
		genai.Text("Transcript:\n"+transcript),
	)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeLLMAnalyzeFailed, "scoring request failed", err)
	}

	text := gcp.ExtractText(resp)
	if text == "" {
		return "", apperr.New(apperr.CodeLLMAnalyzeFailed, "scoring model returned no text")
	}
	return text, nil
}
