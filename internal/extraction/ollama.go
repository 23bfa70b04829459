package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// Ollama implements the Extractor interface using a local Ollama instance.
// Vision models such as llava or qwen2-vl are required for image-based
// analysis; any chat model works for text-based extraction and summaries.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama Extractor instance
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models can be slow
		},
	}, nil
}

// ollamaChatRequest represents the request body for Ollama's chat API
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ollamaChatResponse represents the response from Ollama's chat API
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// ExtractPair analyzes an invoice and a purchase order
func (o *Ollama) ExtractPair(invoice, po FileInput) (*DocumentPair, error) {
	invoiceText := documentText(invoice)
	poText := documentText(po)

	var userMessage ollamaMessage
	if invoiceText != "" && poText != "" {
		userMessage = ollamaMessage{
			Role: "user",
			Content: textExtractionPrompt +
				"\n--- INVOICE TEXT ---\n" + invoiceText +
				"\n--- PO TEXT ---\n" + poText,
		}
	} else {
		invoiceImage, err := preparePageImage(invoice)
		if err != nil {
			return nil, fmt.Errorf("preparing invoice image: %w", err)
		}
		poImage, err := preparePageImage(po)
		if err != nil {
			return nil, fmt.Errorf("preparing purchase order image: %w", err)
		}
		userMessage = ollamaMessage{
			Role:    "user",
			Content: imageExtractionPrompt,
			Images: []string{
				base64.StdEncoding.EncodeToString(invoiceImage),
				base64.StdEncoding.EncodeToString(poImage),
			},
		}
	}

	text, err := o.chat([]ollamaMessage{
		{
			Role:    "system",
			Content: "You are an expert at reading invoices and purchase orders. You must carefully read all text and extract accurate structured information.",
		},
		userMessage,
	})
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
func (o *Ollama) SummarizeMismatch(invoice, po reconcile.Document, summary reconcile.MatchSummary) (string, error) {
	prompt, err := mismatchSummaryPrompt(invoice, po, summary)
	if err != nil {
		return "", err
	}

	return o.chat([]ollamaMessage{{Role: "user", Content: prompt}})
}

// chat sends a chat request and returns the trimmed response text
func (o *Ollama) chat(messages []ollamaMessage) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	reqBody := ollamaChatRequest{
		Model:    o.model,
		Stream:   false,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

// Close closes the Ollama client (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
