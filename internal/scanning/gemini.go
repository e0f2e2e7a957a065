package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Extractor interface using Google Gemini
type Gemini struct {
	modelName string
	timeout   time.Duration
}

// NewGemini creates a new Gemini Extractor instance. The API credential is
// not held here; it is supplied per call by the operator.
func NewGemini(modelName string) (*Gemini, error) {
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	return &Gemini{
		modelName: modelName,
		timeout:   60 * time.Second,
	}, nil
}

// ExtractFromText analyzes the text content of a certificate document
func (g *Gemini) ExtractFromText(ctx context.Context, documentText string, credential string) (*CertificateData, error) {
	parts := []genai.Part{
		genai.Text(certificateScanPrompt),
		genai.Text("Document text:\n\n" + documentText),
	}
	return g.generate(ctx, credential, parts)
}

// ExtractFromImage analyzes a scanned certificate image
func (g *Gemini) ExtractFromImage(ctx context.Context, content []byte, mimeType string, credential string) (*CertificateData, error) {
	// genai.ImageData expects just the format suffix (e.g. "png"), not the
	// full MIME type (e.g. "image/png")
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	parts := []genai.Part{
		genai.ImageData(format, content),
		genai.Text(certificateScanPrompt),
	}
	return g.generate(ctx, credential, parts)
}

// generate runs a single content-generation call with a fresh client keyed
// by the supplied credential
func (g *Gemini) generate(ctx context.Context, credential string, parts []genai.Part) (*CertificateData, error) {
	if credential == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.modelName)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	data, err := parseCertificateJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("parsing certificate data: %w", err)
	}

	return data, nil
}

// Close closes the Gemini extractor (clients are per-call, nothing to release)
func (g *Gemini) Close() error {
	return nil
}
