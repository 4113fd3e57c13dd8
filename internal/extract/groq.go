// Package extract turns receipt images into structured draft receipts
// using a vision model behind an OpenAI-compatible chat-completions API.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultTimeout = 60 * time.Second
)

const extractionPrompt = "This is a receipt or invoice image. Extract the following information in a structured JSON format: merchantName, date, location, items (array with name, quantity, unitPrice, total for each item), subtotal, tax, tip (if available), and total. Make sure all values use proper numeric formats with decimals where applicable."

// ExtractedReceipt is the model's structured reading of a receipt image.
// It is a draft: the caller reviews and saves it explicitly, nothing is
// persisted here.
type ExtractedReceipt struct {
	MerchantName string              `json:"merchantName"`
	Date         string              `json:"date"`
	Location     string              `json:"location"`
	Items        []ExtractedItem     `json:"items"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Tax          decimal.Decimal     `json:"tax"`
	Tip          decimal.NullDecimal `json:"tip"`
	Total        decimal.Decimal     `json:"total"`
}

// ExtractedItem is one line item read from the image.
type ExtractedItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// Client calls the vision model.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature"`
	MaxCompletionTokens int             `json:"max_completion_tokens"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract reads a receipt image and returns the model's structured
// interpretation. The request is bounded by ctx; cancel it to abort.
func (c *Client) Extract(ctx context.Context, image []byte, contentType string) (*ExtractedReceipt, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: extractionPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
		ResponseFormat:      &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("extraction API error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("extraction API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("extraction API returned no choices")
	}

	var receipt ExtractedReceipt
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &receipt); err != nil {
		return nil, fmt.Errorf("model returned malformed receipt JSON: %w", err)
	}
	slog.Debug("receipt extracted",
		"merchant", receipt.MerchantName,
		"items", len(receipt.Items),
	)
	return &receipt, nil
}
