package certificate

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatDate", func() {
	It("passes through canonical dates unchanged", func() {
		Expect(FormatDate("2024-03-05")).To(Equal("2024-03-05"))
	})

	It("reads day-month-year before month-day-year", func() {
		Expect(FormatDate("05/03/2024")).To(Equal("2024-03-05"))
		Expect(FormatDate("5/3/2024")).To(Equal("2024-03-05"))
		Expect(FormatDate("05-03-2024")).To(Equal("2024-03-05"))
	})

	It("rejects invalid calendar dates instead of rolling them over", func() {
		Expect(FormatDate("31/02/2024")).To(Equal(""))
		Expect(FormatDate("31/04/2024")).To(Equal(""))
	})

	It("rejects out-of-range day and month components", func() {
		Expect(FormatDate("32/01/2024")).To(Equal(""))
		Expect(FormatDate("01/13/2024")).To(Equal(""))
	})

	It("accepts leap-day dates in leap years only", func() {
		Expect(FormatDate("29/02/2024")).To(Equal("2024-02-29"))
		Expect(FormatDate("29/02/2023")).To(Equal(""))
	})

	It("falls back to generic parsing for free-form dates", func() {
		Expect(FormatDate("Jan 1 2024")).To(Equal("2024-01-01"))
		Expect(FormatDate("January 1, 2024")).To(Equal("2024-01-01"))
		Expect(FormatDate("15 Mar 2024")).To(Equal("2024-03-15"))
	})

	It("tolerates surrounding whitespace", func() {
		Expect(FormatDate("  2024-03-05 ")).To(Equal("2024-03-05"))
	})

	It("returns empty for unparseable input", func() {
		Expect(FormatDate("")).To(Equal(""))
		Expect(FormatDate("not a date")).To(Equal(""))
	})
})
