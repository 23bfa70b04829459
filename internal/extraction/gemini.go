package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// Gemini implements the Extractor interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Extractor instance. The API key is injected
// here at construction; nothing in this package reads ambient process state.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-flash-latest"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Deterministic extraction output
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ExtractPair analyzes an invoice and a purchase order in one model call.
// Embedded PDF text is preferred; if either document has no usable text the
// pair is rasterized and analyzed as images.
func (g *Gemini) ExtractPair(invoice, po FileInput) (*DocumentPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	parts, err := buildExtractionParts(invoice, po)
	if err != nil {
		return nil, err
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	pair, err := parseAnalysisJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing analysis: %w", err)
	}

	return pair, nil
}

// SummarizeMismatch generates a natural-language summary of the discrepancies
func (g *Gemini) SummarizeMismatch(invoice, po reconcile.Document, summary reconcile.MatchSummary) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prompt, err := mismatchSummaryPrompt(invoice, po, summary)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	return text, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// buildExtractionParts assembles the prompt payload for a document pair,
// choosing text-based or image-based analysis
func buildExtractionParts(invoice, po FileInput) ([]genai.Part, error) {
	invoiceText := documentText(invoice)
	poText := documentText(po)

	if invoiceText != "" && poText != "" {
		slog.Info("Using text-based extraction")
		return []genai.Part{
			genai.Text(textExtractionPrompt),
			genai.Text("\n--- INVOICE TEXT ---\n" + invoiceText),
			genai.Text("\n--- PO TEXT ---\n" + poText),
		}, nil
	}

	slog.Info("Text extraction unavailable, falling back to image-based analysis")

	invoiceImage, err := preparePageImage(invoice)
	if err != nil {
		return nil, fmt.Errorf("preparing invoice image: %w", err)
	}
	poImage, err := preparePageImage(po)
	if err != nil {
		return nil, fmt.Errorf("preparing purchase order image: %w", err)
	}

	// genai.ImageData expects just the format suffix (e.g. "png"), not the
	// full MIME type. preparePageImage always yields PNG.
	return []genai.Part{
		genai.Text(imageExtractionPrompt),
		genai.ImageData("png", invoiceImage),
		genai.ImageData("png", poImage),
	}, nil
}

// responseText concatenates the text parts of a Gemini response
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
