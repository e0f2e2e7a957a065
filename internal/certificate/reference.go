package certificate

import "strings"

// Reference table columns (0-indexed). Column 4 is reserved in the source
// export and intentionally unused.
const (
	refColGameName  = 0
	refColProvider  = 1
	refColActivated = 2
	refColLiveDate  = 3
	refColGameCode  = 5
	refMinFields    = 6
)

// ParseReferenceTable parses a pasted tab-separated reference export into a
// lookup table keyed by normalized game name.
//
// A first line whose first field contains "game provider" (case-insensitive)
// is treated as a header and skipped. Lines with fewer than six fields, or
// with a blank game name or provider, are discarded. When two lines share a
// normalized name the later line wins.
func ParseReferenceTable(rawText string) ReferenceTable {
	table := make(ReferenceTable)

	lines := strings.Split(strings.ReplaceAll(rawText, "\r\n", "\n"), "\n")
	for i, line := range lines {
		fields := strings.Split(line, "\t")

		if i == 0 && strings.Contains(strings.ToLower(fields[0]), "game provider") {
			continue
		}
		if len(fields) < refMinFields {
			continue
		}

		name := strings.TrimSpace(fields[refColGameName])
		provider := strings.TrimSpace(fields[refColProvider])
		if name == "" || provider == "" {
			continue
		}

		key := NormalizeName(name)
		if key == "" {
			continue
		}

		table[key] = ReferenceEntry{
			Provider:       provider,
			ActivatedInIMS: optionalField(fields[refColActivated]),
			PortalLiveDate: optionalField(fields[refColLiveDate]),
			IMSGameCode:    optionalField(fields[refColGameCode]),
		}
	}

	return table
}

// optionalField trims a field and returns nil when nothing remains
func optionalField(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
