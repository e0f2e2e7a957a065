package certificate

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("writes the document under the base directory", func() {
			path, err := storage.Save("cert.pdf", []byte("pdf content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("cert.pdf"))
			Expect(filepath.Join(tmpDir, "cert.pdf")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		When("the document exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("cert.pdf", []byte("pdf content"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns the original bytes", func() {
				data, err := storage.Get("cert.pdf")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("pdf content"))
			})
		})

		When("the document is missing", func() {
			It("returns an error", func() {
				_, err := storage.Get("missing.pdf")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		When("the document exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("cert.pdf", []byte("pdf content"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("removes it from disk", func() {
				Expect(storage.Delete("cert.pdf")).To(Succeed())
				Expect(filepath.Join(tmpDir, "cert.pdf")).NotTo(BeAnExistingFile())
			})
		})

		When("the document is missing", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.pdf")).NotTo(Succeed())
			})
		})
	})
})
