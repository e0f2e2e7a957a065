package certificate

import "time"

// Status is the lifecycle state of a processed file
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// FileDetail is one evidentiary file listed for a game on a certificate
type FileDetail struct {
	Name string  `json:"name"`
	MD5  *string `json:"md5,omitempty"`
	SHA1 *string `json:"sha1,omitempty"`
}

// GameInstance is one certified game detected within a processed document
type GameInstance struct {
	GameName *string      `json:"game_name,omitempty"`
	GameCode *string      `json:"game_code,omitempty"`
	Files    []FileDetail `json:"files,omitempty"`
}

// ProcessedFile is one uploaded certification document and its extraction state.
// Seq records queue position; files are always processed and listed in Seq order.
type ProcessedFile struct {
	ID                         string         `json:"id"`
	Seq                        int            `json:"seq"`
	Filename                   string         `json:"filename"`
	ContentType                string         `json:"content_type"`
	Size                       int64          `json:"size"`
	StoredPath                 string         `json:"stored_path,omitempty"`
	ReportNumber               *string        `json:"report_number,omitempty"`
	CertificationDate          *string        `json:"certification_date,omitempty"`
	SupplierRegistrationNumber *string        `json:"supplier_registration_number,omitempty"`
	Instances                  []GameInstance `json:"instances"`
	Status                     Status         `json:"status"`
	ErrorMessage               string         `json:"error_message,omitempty"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
}

// ReferenceEntry holds the provider metadata for one game in the reference table
type ReferenceEntry struct {
	Provider       string  `json:"provider"`
	ActivatedInIMS *string `json:"activated_in_ims,omitempty"`
	PortalLiveDate *string `json:"portal_live_date,omitempty"`
	IMSGameCode    *string `json:"ims_game_code,omitempty"`
}

// ReferenceTable maps normalized game names to provider metadata
type ReferenceTable map[string]ReferenceEntry

// deref returns the value of an optional string, or "" when absent
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
