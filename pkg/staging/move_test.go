package staging_test

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lisanmuaddib/zaim-export/pkg/staging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Move", func() {
	var src, dstDir string

	BeforeEach(func() {
		srcDir, err := os.MkdirTemp("", "move-src-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, srcDir)
		dstDir, err = os.MkdirTemp("", "move-dst-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dstDir)

		src = filepath.Join(srcDir, "export.csv")
		Expect(os.WriteFile(src, []byte("a,b\n"), 0o644)).To(Succeed())
	})

	It("moves the file to its destination", func() {
		dst := filepath.Join(dstDir, "final.csv")

		Expect(staging.Move(src, dst)).To(Succeed())
		Expect(src).NotTo(BeAnExistingFile())
		Expect(os.ReadFile(dst)).To(Equal([]byte("a,b\n")))
	})

	It("leaves an existing destination untouched", func() {
		dst := filepath.Join(dstDir, "final.csv")
		Expect(os.WriteFile(dst, []byte("earlier"), 0o644)).To(Succeed())

		err := staging.Move(src, dst)

		Expect(err).To(MatchError(fs.ErrExist))
		Expect(os.ReadFile(dst)).To(Equal([]byte("earlier")))
		Expect(src).To(BeAnExistingFile())
	})

	It("fails when the destination directory is missing", func() {
		err := staging.Move(src, filepath.Join(dstDir, "missing", "final.csv"))
		Expect(err).To(HaveOccurred())
		Expect(src).To(BeAnExistingFile())
	})
})

var _ = Describe("Copy", func() {
	It("refuses to overwrite an existing file", func() {
		dir, err := os.MkdirTemp("", "copy-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		src := filepath.Join(dir, "src.csv")
		dst := filepath.Join(dir, "dst.csv")
		Expect(os.WriteFile(src, []byte("new"), 0o644)).To(Succeed())
		Expect(os.WriteFile(dst, []byte("old"), 0o644)).To(Succeed())

		Expect(staging.Copy(src, dst)).NotTo(Succeed())
		Expect(os.ReadFile(dst)).To(Equal([]byte("old")))
	})

	It("copies contents into a new file", func() {
		dir, err := os.MkdirTemp("", "copy-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		src := filepath.Join(dir, "src.csv")
		dst := filepath.Join(dir, "dst.csv")
		Expect(os.WriteFile(src, []byte("data"), 0o644)).To(Succeed())

		Expect(staging.Copy(src, dst)).To(Succeed())
		Expect(os.ReadFile(dst)).To(Equal([]byte("data")))
		Expect(src).To(BeAnExistingFile())
	})
})
