package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DocumentPrompt is sent alongside every analyzed document
const DocumentPrompt = "Extract all text and key medical details (Date, Diagnosis, Medicines, Symptoms) from this document. Provide the raw text content as well."

const researchInstruction = `You are a Medical Research Agent.
Your task is to search for new cure methods, treatments, and ongoing research for specific diseases, especially rare ones.
Synthesize what you know into a concise summary of potential treatments, clinical trials, or new therapies.
Always prioritize information from reputable medical sources (journals, universities, major health organizations).`

// GeminiClient talks to Google's Gemini API. It backs both document
// extraction and the research capability.
type GeminiClient struct {
	client        *genai.Client
	documentModel string
	researchModel string
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, apiKey, documentModel, researchModel string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("analysis: gemini api key is required")
	}
	if strings.TrimSpace(documentModel) == "" {
		documentModel = "gemini-1.5-flash"
	}
	if strings.TrimSpace(researchModel) == "" {
		researchModel = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("analysis: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		documentModel: documentModel,
		researchModel: researchModel,
	}, nil
}

// Analyze extracts text and medical details from an image or PDF
func (c *GeminiClient) Analyze(ctx context.Context, data []byte, mimeType string) (string, error) {
	model := c.client.GenerativeModel(c.documentModel)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(DocumentPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("analysis: gemini document analysis failed: %w", err)
	}
	return responseText(resp)
}

// Research summarizes treatments and ongoing research for a query
func (c *GeminiClient) Research(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("analysis: research query is empty")
	}
	model := c.client.GenerativeModel(c.researchModel)
	model.SystemInstruction = genai.NewUserContent(genai.Text(researchInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(query))
	if err != nil {
		return "", fmt.Errorf("analysis: gemini research failed: %w", err)
	}
	return responseText(resp)
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("analysis: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("analysis: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return strings.TrimSpace(text.String()), nil
}
