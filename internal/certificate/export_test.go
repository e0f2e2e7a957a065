package certificate

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func completedFile(report string, instances ...GameInstance) *ProcessedFile {
	return &ProcessedFile{
		ReportNumber: strPtr(report),
		Status:       StatusCompleted,
		Instances:    instances,
	}
}

var _ = Describe("FullTSV", func() {
	var (
		files []*ProcessedFile
		table ReferenceTable
		tsv   string
	)

	BeforeEach(func() {
		table = ReferenceTable{
			"book of ra": {
				Provider:       "Novomatic",
				ActivatedInIMS: strPtr("Yes"),
				PortalLiveDate: strPtr("05/03/2024"),
				IMSGameCode:    strPtr("BOR123"),
			},
		}
		files = []*ProcessedFile{
			completedFile("MT-1", GameInstance{
				GameName: strPtr("Book of Ra™ (copy)"),
				Files: []FileDetail{
					{Name: "bor.bin", MD5: strPtr("m1")},
					{Name: "bor.dat", SHA1: strPtr("s2")},
				},
			}),
		}
	})

	JustBeforeEach(func() {
		tsv = FullTSV(files, table)
	})

	It("starts with the fixed header row", func() {
		Expect(strings.Split(tsv, "\n")[0]).To(Equal(
			"GameName\tGameCodes\tProgressive\tCertificateRef\tActivated in IMS\tPortal live date\tSupplierRegistrationnumber\tDeactivated\tFileList\tHashList"))
	})

	It("renders one row per instance with reference-sourced cells", func() {
		lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[1]).To(Equal(
			"Book of Ra\tBOR123\t\tMT-1\tYes\t2024-03-05\t\t\t\"bor.bin, bor.dat\"\t\"m1, s2\""))
	})

	When("a completed file has no instances", func() {
		BeforeEach(func() {
			files = []*ProcessedFile{completedFile("MT-2")}
		})

		It("renders a row carrying only the report number", func() {
			lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
			Expect(lines[1]).To(Equal("\t\t\tMT-2\t\t\t\t\t\t"))
		})
	})

	When("a file is not completed", func() {
		BeforeEach(func() {
			files = append(files, &ProcessedFile{
				ReportNumber: strPtr("MT-ERR"),
				Status:       StatusError,
				Instances:    []GameInstance{{GameName: strPtr("Ghost")}},
			})
		})

		It("excludes the file entirely", func() {
			Expect(tsv).NotTo(ContainSubstring("MT-ERR"))
			Expect(tsv).NotTo(ContainSubstring("Ghost"))
		})
	})

	When("a file name contains quotes", func() {
		BeforeEach(func() {
			files = []*ProcessedFile{
				completedFile("MT-3", GameInstance{
					GameName: strPtr("Quoted"),
					Files:    []FileDetail{{Name: `say "hi".bin`}},
				}),
			}
		})

		It("doubles internal quotes inside the quoted cell", func() {
			Expect(tsv).To(ContainSubstring(`"say ""hi"".bin"`))
		})
	})

	When("an instance has no files", func() {
		BeforeEach(func() {
			files = []*ProcessedFile{
				completedFile("MT-4", GameInstance{GameName: strPtr("Bare")}),
			}
		})

		It("leaves the list cells empty and unquoted", func() {
			lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
			Expect(lines[1]).To(HaveSuffix("\t\t"))
			Expect(lines[1]).NotTo(ContainSubstring(`"`))
		})
	})

	It("yields byte-identical output on repeated invocation", func() {
		Expect(FullTSV(files, table)).To(Equal(FullTSV(files, table)))
	})
})

var _ = Describe("CondensedTSV", func() {
	var (
		files []*ProcessedFile
		table ReferenceTable
		tsv   string
	)

	BeforeEach(func() {
		table = ReferenceTable{
			"alpha":   {Provider: "Zeta Games", IMSGameCode: strPtr("A1")},
			"bravo":   {Provider: "Acme", IMSGameCode: strPtr("B1")},
			"charlie": {Provider: "Acme", IMSGameCode: strPtr("C1")},
		}
		files = []*ProcessedFile{
			completedFile("MT-1",
				GameInstance{GameName: strPtr("Alpha")},
				GameInstance{GameName: strPtr("Charlie")},
				GameInstance{GameName: strPtr("Bravo")},
				GameInstance{GameName: strPtr("Mystery")},
			),
		}
	})

	JustBeforeEach(func() {
		tsv = CondensedTSV(files, table)
	})

	It("starts with the fixed header row", func() {
		Expect(strings.Split(tsv, "\n")[0]).To(Equal(
			"Game Name\tIMS Game Code\tCertificate Number\tActivated in IMS\tPortal Live Date"))
	})

	It("sorts by provider then game name, unresolved last", func() {
		lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
		Expect(lines).To(HaveLen(5))
		Expect(lines[1]).To(HavePrefix("Bravo\t"))
		Expect(lines[2]).To(HavePrefix("Charlie\t"))
		Expect(lines[3]).To(HavePrefix("Alpha\t"))
		Expect(lines[4]).To(HavePrefix("Mystery\t"))
	})

	It("omits file columns entirely", func() {
		Expect(strings.Split(tsv, "\n")[0]).NotTo(ContainSubstring("FileList"))
	})

	It("yields byte-identical output on repeated invocation", func() {
		Expect(CondensedTSV(files, table)).To(Equal(CondensedTSV(files, table)))
	})
})

var _ = Describe("SanitizeFolderName", func() {
	It("replaces filesystem-illegal characters with underscores", func() {
		Expect(SanitizeFolderName(`Play/n: Go`)).To(Equal("Play_n_ Go"))
		Expect(SanitizeFolderName(`a<b>c"d\e|f?g*h`)).To(Equal("a_b_c_d_e_f_g_h"))
	})

	It("leaves other characters untouched", func() {
		Expect(SanitizeFolderName("Games Global")).To(Equal("Games Global"))
	})
})

var _ = Describe("GroupCompletedByProvider", func() {
	var table ReferenceTable

	BeforeEach(func() {
		table = ReferenceTable{
			"alpha": {Provider: "Acme"},
			"bravo": {Provider: "Beta"},
		}
	})

	It("groups a file under every provider its instances resolve to", func() {
		f := completedFile("MT-1",
			GameInstance{GameName: strPtr("Alpha")},
			GameInstance{GameName: strPtr("Bravo")},
		)
		groups := GroupCompletedByProvider([]*ProcessedFile{f}, table)
		Expect(groups).To(HaveLen(2))
		Expect(groups["Acme"]).To(ConsistOf(f))
		Expect(groups["Beta"]).To(ConsistOf(f))
	})

	It("routes fully-unresolved files to Uncategorized only", func() {
		f := completedFile("MT-2", GameInstance{GameName: strPtr("Mystery")})
		groups := GroupCompletedByProvider([]*ProcessedFile{f}, table)
		Expect(groups).To(HaveLen(1))
		Expect(groups["Uncategorized"]).To(ConsistOf(f))
	})

	It("never duplicates a partially-resolved file into Uncategorized", func() {
		f := completedFile("MT-3",
			GameInstance{GameName: strPtr("Alpha")},
			GameInstance{GameName: strPtr("Mystery")},
		)
		groups := GroupCompletedByProvider([]*ProcessedFile{f}, table)
		Expect(groups).To(HaveKey("Acme"))
		Expect(groups).NotTo(HaveKey("Uncategorized"))
	})

	It("ignores non-completed files", func() {
		f := &ProcessedFile{Status: StatusQueued, Instances: []GameInstance{{GameName: strPtr("Alpha")}}}
		Expect(GroupCompletedByProvider([]*ProcessedFile{f}, table)).To(BeEmpty())
	})
})

var _ = Describe("BuildArchive", func() {
	var (
		files   []*ProcessedFile
		table   ReferenceTable
		storage *mockStorage
	)

	BeforeEach(func() {
		table = ReferenceTable{
			"alpha": {Provider: "Play/n: Go"},
		}
		storage = newMockStorage()
		storage.files["stored-1"] = []byte("pdf bytes one")
		storage.files["stored-2"] = []byte("pdf bytes two")

		resolved := completedFile("MT-1", GameInstance{GameName: strPtr("Alpha")})
		resolved.Filename = "alpha.pdf"
		resolved.StoredPath = "stored-1"

		unresolved := completedFile("MT-2", GameInstance{GameName: strPtr("Mystery")})
		unresolved.Filename = "mystery.pdf"
		unresolved.StoredPath = "stored-2"

		files = []*ProcessedFile{resolved, unresolved}
	})

	It("packages originals under sanitized provider folders", func() {
		archive, err := BuildArchive(files, table, storage)
		Expect(err).NotTo(HaveOccurred())

		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		Expect(err).NotTo(HaveOccurred())

		entries := map[string]string{}
		for _, zf := range zr.File {
			rc, err := zf.Open()
			Expect(err).NotTo(HaveOccurred())
			content, err := io.ReadAll(rc)
			rc.Close()
			Expect(err).NotTo(HaveOccurred())
			entries[zf.Name] = string(content)
		}

		Expect(entries).To(HaveKeyWithValue("Play_n_ Go/alpha.pdf", "pdf bytes one"))
		Expect(entries).To(HaveKeyWithValue("Uncategorized/mystery.pdf", "pdf bytes two"))
	})

	It("refuses to produce an empty archive", func() {
		_, err := BuildArchive(nil, table, storage)
		Expect(err).To(MatchError(ErrNoCompletedFiles))
	})

	It("fails when a stored file cannot be read", func() {
		storage.getErr = errors.New("gone")
		_, err := BuildArchive(files, table, storage)
		Expect(err).To(HaveOccurred())
	})
})
