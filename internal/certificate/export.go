package certificate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

const fullTSVHeader = "GameName\tGameCodes\tProgressive\tCertificateRef\tActivated in IMS\tPortal live date\tSupplierRegistrationnumber\tDeactivated\tFileList\tHashList"

const condensedTSVHeader = "Game Name\tIMS Game Code\tCertificate Number\tActivated in IMS\tPortal Live Date"

// uncategorizedFolder receives archive files whose instances resolve to no provider
const uncategorizedFolder = "Uncategorized"

// unresolvedSortKey orders instances without a provider after every real
// provider name in the condensed export
const unresolvedSortKey = "￿"

// FullTSV renders the full export table: one row per game instance of every
// completed file, or a row carrying just the report number for a completed
// file with no instances. It is a pure function of its inputs; unchanged
// inputs yield byte-identical output.
func FullTSV(files []*ProcessedFile, table ReferenceTable) string {
	var b strings.Builder
	b.WriteString(fullTSVHeader)
	b.WriteString("\n")

	for _, f := range files {
		if f.Status != StatusCompleted {
			continue
		}
		if len(f.Instances) == 0 {
			writeRow(&b, []string{"", "", "", deref(f.ReportNumber), "", "", "", "", "", ""})
			continue
		}
		for _, inst := range f.Instances {
			code, activated, liveDate := referenceCells(inst, table)
			writeRow(&b, []string{
				DisplayName(deref(inst.GameName)),
				code,
				"", // Progressive
				deref(f.ReportNumber),
				activated,
				liveDate,
				"", // SupplierRegistrationnumber
				"", // Deactivated
				quoteListCell(joinFileNames(inst.Files)),
				quoteListCell(joinFileHashes(inst.Files)),
			})
		}
	}

	return b.String()
}

// CondensedTSV renders the condensed export table: one row per game instance
// of every completed file, sorted by resolved provider then display name,
// both in ordinal string order. Instances with no resolvable provider sort last.
func CondensedTSV(files []*ProcessedFile, table ReferenceTable) string {
	type row struct {
		provider string
		name     string
		cells    []string
	}

	var rows []row
	for _, f := range files {
		if f.Status != StatusCompleted {
			continue
		}
		for _, inst := range f.Instances {
			name := DisplayName(deref(inst.GameName))
			provider, ok := ResolveProvider(inst, table)
			if !ok {
				provider = unresolvedSortKey
			}
			code, activated, liveDate := referenceCells(inst, table)
			rows = append(rows, row{
				provider: provider,
				name:     name,
				cells:    []string{name, code, deref(f.ReportNumber), activated, liveDate},
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].provider != rows[j].provider {
			return rows[i].provider < rows[j].provider
		}
		return rows[i].name < rows[j].name
	})

	var b strings.Builder
	b.WriteString(condensedTSVHeader)
	b.WriteString("\n")
	for _, r := range rows {
		writeRow(&b, r.cells)
	}
	return b.String()
}

// referenceCells resolves the reference-table-sourced cells for an instance.
// The IMS game code comes from the table only, never from the extraction result.
func referenceCells(inst GameInstance, table ReferenceTable) (code, activated, liveDate string) {
	entry, ok := table[NormalizeName(deref(inst.GameName))]
	if !ok {
		return "", "", ""
	}
	return deref(entry.IMSGameCode), deref(entry.ActivatedInIMS), FormatDate(deref(entry.PortalLiveDate))
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.Join(cells, "\t"))
	b.WriteString("\n")
}

// quoteListCell quotes a joined list cell and doubles internal quotes.
// Empty content stays an empty, unquoted cell.
func quoteListCell(s string) string {
	if s == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func joinFileNames(files []FileDetail) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return strings.Join(names, ", ")
}

// joinFileHashes joins one hash per file, preferring MD5 and falling back
// to SHA1; files with neither contribute nothing
func joinFileHashes(files []FileDetail) string {
	hashes := make([]string, 0, len(files))
	for _, f := range files {
		switch {
		case deref(f.MD5) != "":
			hashes = append(hashes, deref(f.MD5))
		case deref(f.SHA1) != "":
			hashes = append(hashes, deref(f.SHA1))
		}
	}
	return strings.Join(hashes, ", ")
}

// SanitizeFolderName replaces filesystem-illegal characters with underscores
func SanitizeFolderName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
}

// GroupCompletedByProvider assigns each completed file to the folders of the
// providers its instances resolve to. A file with at least one resolved
// instance goes only into resolved folders; only files with zero resolved
// instances land in the Uncategorized folder.
func GroupCompletedByProvider(files []*ProcessedFile, table ReferenceTable) map[string][]*ProcessedFile {
	groups := make(map[string][]*ProcessedFile)

	for _, f := range files {
		if f.Status != StatusCompleted {
			continue
		}
		seen := make(map[string]bool)
		for _, inst := range f.Instances {
			provider, ok := ResolveProvider(inst, table)
			if !ok || seen[provider] {
				continue
			}
			seen[provider] = true
			groups[provider] = append(groups[provider], f)
		}
		if len(seen) == 0 {
			groups[uncategorizedFolder] = append(groups[uncategorizedFolder], f)
		}
	}

	return groups
}

// FileReader supplies the original bytes of a stored upload for archiving
type FileReader interface {
	Get(path string) ([]byte, error)
}

// BuildArchive packages each completed file's original bytes into a ZIP,
// one folder per resolved provider. ErrNoCompletedFiles is returned instead
// of an empty archive when no file is groupable.
func BuildArchive(files []*ProcessedFile, table ReferenceTable, reader FileReader) ([]byte, error) {
	groups := GroupCompletedByProvider(files, table)
	if len(groups) == 0 {
		return nil, ErrNoCompletedFiles
	}

	providers := make([]string, 0, len(groups))
	for provider := range groups {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, provider := range providers {
		folder := SanitizeFolderName(provider)
		for _, f := range groups[provider] {
			data, err := reader.Get(f.StoredPath)
			if err != nil {
				zw.Close()
				return nil, fmt.Errorf("reading stored file %s: %w", f.Filename, err)
			}
			w, err := zw.Create(folder + "/" + f.Filename)
			if err != nil {
				zw.Close()
				return nil, fmt.Errorf("adding %s to archive: %w", f.Filename, err)
			}
			if _, err := w.Write(data); err != nil {
				zw.Close()
				return nil, fmt.Errorf("writing %s to archive: %w", f.Filename, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	return buf.Bytes(), nil
}
