package scanning

import "context"

// ExtractedFile is one evidentiary file listed for a game on a certificate
type ExtractedFile struct {
	Name string  `json:"name"`
	MD5  *string `json:"md5"`
	SHA1 *string `json:"sha1"`
}

// ExtractedGame is one game entry detected on a certificate
type ExtractedGame struct {
	GameName *string         `json:"game_name"`
	GameCode *string         `json:"game_code"`
	Files    []ExtractedFile `json:"files"`
}

// CertificateData contains structured information extracted from a certification document
type CertificateData struct {
	ReportNumber               *string         `json:"report_number"`
	CertificationDate          *string         `json:"certification_date"`
	SupplierRegistrationNumber *string         `json:"supplier_registration_number"`
	Games                      []ExtractedGame `json:"games"`
}

// Extractor defines the interface for certificate extraction operations.
// The credential is supplied per call because the operator enters it in the
// browser rather than configuring it at startup.
type Extractor interface {
	// ExtractFromText analyzes the text content of a certificate document
	ExtractFromText(ctx context.Context, documentText string, credential string) (*CertificateData, error)
	// ExtractFromImage analyzes a scanned certificate image
	ExtractFromImage(ctx context.Context, content []byte, mimeType string, credential string) (*CertificateData, error)
	// Close closes the extractor and releases resources
	Close() error
}
