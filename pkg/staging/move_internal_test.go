package staging

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Move across filesystems", func() {
	var src, dst string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "move-xdev-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		src = filepath.Join(dir, "export.csv")
		dst = filepath.Join(dir, "final.csv")
		Expect(os.WriteFile(src, []byte("a,b\n"), 0o644)).To(Succeed())

		link = func(oldname, newname string) error {
			return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EXDEV}
		}
		DeferCleanup(func() { link = os.Link })
	})

	It("copies the file and removes the source", func() {
		Expect(Move(src, dst)).To(Succeed())

		Expect(os.ReadFile(dst)).To(Equal([]byte("a,b\n")))
		Expect(src).NotTo(BeAnExistingFile())
	})

	It("does not replace a file that already exists", func() {
		Expect(os.WriteFile(dst, []byte("earlier"), 0o644)).To(Succeed())

		err := Move(src, dst)

		Expect(err).To(MatchError(fs.ErrExist))
		Expect(os.ReadFile(dst)).To(Equal([]byte("earlier")))
		Expect(src).To(BeAnExistingFile())
	})
})
