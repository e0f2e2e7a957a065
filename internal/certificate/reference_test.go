package certificate

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseReferenceTable", func() {
	var (
		rawText string
		table   ReferenceTable
	)

	JustBeforeEach(func() {
		table = ParseReferenceTable(rawText)
	})

	When("parsing a well-formed export", func() {
		BeforeEach(func() {
			rawText = "Game Provider Export\tcol\tcol\tcol\tcol\tcol\n" +
				"Book of Ra\tNovomatic\tYes\t05/03/2024\tignored\tBOR123\n" +
				"Starburst\tNetEnt\t\t\t\t\n"
		})

		It("skips the header line", func() {
			Expect(table).NotTo(HaveKey("game provider export"))
		})

		It("keys entries by normalized name", func() {
			Expect(table).To(HaveKey("book of ra"))
			Expect(table).To(HaveKey("starburst"))
			Expect(table).To(HaveLen(2))
		})

		It("extracts the provider metadata", func() {
			entry := table["book of ra"]
			Expect(entry.Provider).To(Equal("Novomatic"))
			Expect(entry.ActivatedInIMS).To(HaveValue(Equal("Yes")))
			Expect(entry.PortalLiveDate).To(HaveValue(Equal("05/03/2024")))
			Expect(entry.IMSGameCode).To(HaveValue(Equal("BOR123")))
		})

		It("turns blank optional fields into nil, not empty strings", func() {
			entry := table["starburst"]
			Expect(entry.ActivatedInIMS).To(BeNil())
			Expect(entry.PortalLiveDate).To(BeNil())
			Expect(entry.IMSGameCode).To(BeNil())
		})
	})

	When("a data line has only five fields", func() {
		BeforeEach(func() {
			rawText = "Book of Ra\tNovomatic\tYes\t05/03/2024\tBOR123\n"
		})

		It("discards the line", func() {
			Expect(table).To(BeEmpty())
		})
	})

	When("the game name or provider is blank", func() {
		BeforeEach(func() {
			rawText = "\tNovomatic\ta\tb\tc\td\n" +
				"Book of Ra\t \ta\tb\tc\td\n"
		})

		It("discards both lines", func() {
			Expect(table).To(BeEmpty())
		})
	})

	When("two lines normalize to the same name", func() {
		BeforeEach(func() {
			rawText = "Book of Ra\tNovomatic\tYes\t\t\tOLD\n" +
				"Book of Ra (copy)\tGreentube\tNo\t\t\tNEW\n"
		})

		It("keeps only the later line", func() {
			Expect(table).To(HaveLen(1))
			entry := table["book of ra"]
			Expect(entry.Provider).To(Equal("Greentube"))
			Expect(entry.IMSGameCode).To(HaveValue(Equal("NEW")))
		})
	})

	When("a header-like first cell appears with Windows line endings", func() {
		BeforeEach(func() {
			rawText = "GAME PROVIDER list\tx\tx\tx\tx\tx\r\n" +
				"Book of Ra\tNovomatic\t\t\t\tBOR\r\n"
		})

		It("still parses the data line", func() {
			Expect(table).To(HaveKey("book of ra"))
			Expect(table).To(HaveLen(1))
		})
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			rawText = ""
		})

		It("returns an empty table", func() {
			Expect(table).To(BeEmpty())
		})
	})
})
