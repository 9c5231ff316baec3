package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/voicejournal/internal/credentials"
)

// --- Journal Scorer Model Prompts ---
const ScorerSystemPrompt = "You are a warm, supportive companion for a family voice-journaling app. Two paired users (a parent and a child) exchange short daily voice recordings. Your task is to read the transcript of one recording and write a short, encouraging reflection for the other participant."
const ScorerUserPrompt = `You will be given the transcript of today's voice recording.

Follow these instructions:

1. Summarize, in one or two sentences, what the speaker talked about today.
2. Note the overall mood of the entry (for example: cheerful, tired, worried, excited).
3. Suggest one gentle question the other participant could ask in their reply recording.

Keep the whole response under 120 words. Write in plain, warm language addressed to the listening participant, never about "the transcript" or "the user". Do not add headings, preambles, or bullet markers.`

// VertexClient holds the pre-configured generative model for journal scoring.
type VertexClient struct {
	ScorerModel *genai.GenerativeModel
	baseClient  *genai.Client
}

// NewVertexClient creates a client holding the scoring model, authenticated
// with the decoded credential.
func NewVertexClient(ctx context.Context, cred *credentials.Credential, region string) (*VertexClient, error) {
	if cred == nil || region == "" {
		return nil, fmt.Errorf("NewVertexClient: credential and region cannot be empty")
	}
	credJSON, err := cred.JSON()
	if err != nil {
		return nil, err
	}

	baseClient, err := genai.NewClient(ctx, cred.ProjectID, region, option.WithCredentialsJSON(credJSON))
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	scorerModel := baseClient.GenerativeModel("gemini-1.5-flash")
	scorerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ScorerSystemPrompt)},
	}

	return &VertexClient{
		ScorerModel: scorerModel,
		baseClient:  baseClient,
	}, nil
}

// Close releases the underlying client connection.
func (c *VertexClient) Close() error {
	return c.baseClient.Close()
}

// ExtractText parses the model's response and robustly extracts text content,
// concatenating multiple text parts and trimming stray code fences.
func ExtractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
		}
	}

	contentStr := strings.TrimSpace(content.String())
	contentStr = strings.TrimPrefix(contentStr, "```markdown")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}
