package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama implements the Extractor interface using a local Ollama instance.
// Vision-capable models such as llava or qwen2-vl are required for the image
// path; any text model works for the PDF-text path. The per-call credential
// is ignored because Ollama is unauthenticated.
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

// ExtractFromText analyzes the text content of a certificate document
func (o *Ollama) ExtractFromText(ctx context.Context, documentText string, _ string) (*CertificateData, error) {
	return o.chat(ctx, ollamaMessage{
		Role:    "user",
		Content: certificateScanPrompt + "\n\nDocument text:\n\n" + documentText,
	})
}

// ExtractFromImage analyzes a scanned certificate image
func (o *Ollama) ExtractFromImage(ctx context.Context, content []byte, _ string, _ string) (*CertificateData, error) {
	return o.chat(ctx, ollamaMessage{
		Role:    "user",
		Content: certificateScanPrompt,
		Images:  []string{base64.StdEncoding.EncodeToString(content)},
	})
}

// chat runs a single non-streaming chat call and parses the JSON reply
func (o *Ollama) chat(ctx context.Context, userMessage ollamaMessage) (*CertificateData, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an expert at reading game certification documents from testing laboratories. You must carefully read all text and extract accurate structured information.",
			},
			userMessage,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	data, err := parseCertificateJSON(chatResp.Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate data: %w", err)
	}

	return data, nil
}

// Close closes the Ollama extractor (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
