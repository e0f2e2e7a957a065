package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseCertificateJSON parses the JSON response from an LLM provider
func parseCertificateJSON(text string) (*CertificateData, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data CertificateData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.ReportNumber = cleanField(data.ReportNumber)
	data.CertificationDate = cleanField(data.CertificationDate)
	data.SupplierRegistrationNumber = cleanField(data.SupplierRegistrationNumber)

	for i := range data.Games {
		game := &data.Games[i]
		game.GameName = cleanField(game.GameName)
		game.GameCode = cleanField(game.GameCode)
		for j := range game.Files {
			game.Files[j].Name = strings.TrimSpace(game.Files[j].Name)
			game.Files[j].MD5 = cleanField(game.Files[j].MD5)
			game.Files[j].SHA1 = cleanField(game.Files[j].SHA1)
		}
	}

	return &data, nil
}

// cleanField trims a string field and collapses empty values to nil
func cleanField(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
