package exportconfig_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lisanmuaddib/zaim-export/internal/exportconfig"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mustParse(argv ...string) *exportconfig.Args {
	args, err := exportconfig.Parse(append(argv, dates...), io.Discard)
	Expect(err).NotTo(HaveOccurred())
	return args
}

func noPrompt() (string, error) {
	Fail("prompt should not be called")
	return "", nil
}

var _ = Describe("Resolve", func() {
	It("places output under ~/Downloads", func() {
		resolved, err := exportconfig.Resolve(mustParse(), nil, "/home/me", noPrompt)

		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.Run.OutputDir).To(Equal("/home/me/Downloads/selenium_downloads"))
		Expect(resolved.Run.Charset).To(Equal(zaim.CharsetUTF8))
		Expect(resolved.Run.Range.End()).To(Equal("20201231"))
	})

	It("rejects unknown charsets", func() {
		_, err := exportconfig.Resolve(mustParse("-c", "ascii"), nil, "/home/me", noPrompt)
		Expect(zaim.IsError(err, zaim.ErrCodeConfig)).To(BeTrue())
	})

	Context("with a defaults file", func() {
		var file *exportconfig.File

		BeforeEach(func() {
			yes := true
			file = &exportconfig.File{
				Charset:           "sjis",
				OutputDir:         "from-file",
				PromptForDownload: &yes,
			}
		})

		It("uses file values for flags left unset", func() {
			resolved, err := exportconfig.Resolve(mustParse(), file, "/home/me", noPrompt)

			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Run.Charset).To(Equal(zaim.CharsetShiftJIS))
			Expect(resolved.Run.OutputDir).To(Equal("/home/me/Downloads/from-file"))
			Expect(resolved.Run.PromptForDownload).To(BeTrue())
		})

		It("lets explicit flags win", func() {
			resolved, err := exportconfig.Resolve(mustParse("-c", "utf8", "-o", "cli"), file, "/home/me", noPrompt)

			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Run.Charset).To(Equal(zaim.CharsetUTF8))
			Expect(resolved.Run.OutputDir).To(Equal("/home/me/Downloads/cli"))
		})
	})

	Context("with --ask-totp", func() {
		It("prompts for the passcode", func() {
			prompt := func() (string, error) { return "112233", nil }

			resolved, err := exportconfig.Resolve(mustParse("--ask-totp"), nil, "/home/me", prompt)

			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Run.Passcode).To(Equal("112233"))
		})

		It("does not prompt when a code was given", func() {
			resolved, err := exportconfig.Resolve(mustParse("--ask-totp", "-t", "445566"), nil, "/home/me", noPrompt)

			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Run.Passcode).To(Equal("445566"))
		})

		It("surfaces prompt failures", func() {
			prompt := func() (string, error) { return "", errors.New("interrupt") }

			_, err := exportconfig.Resolve(mustParse("--ask-totp"), nil, "/home/me", prompt)
			Expect(err).To(MatchError("interrupt"))
		})
	})
})

var _ = Describe("LoadFile", func() {
	It("returns an empty file for an empty path", func() {
		Expect(exportconfig.LoadFile("")).To(Equal(&exportconfig.File{}))
	})

	It("parses defaults, durations and site overrides", func() {
		dir, err := os.MkdirTemp("", "exportconfig-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		path := filepath.Join(dir, "zaim-export.yaml")
		Expect(os.WriteFile(path, []byte(`
charset: sjis
outputdir: zaim
prompt_for_download: false
timeouts:
  element: 15s
  download: 1m
site:
  login_url: http://127.0.0.1:8080/login
`), 0o644)).To(Succeed())

		file, err := exportconfig.LoadFile(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(file.Charset).To(Equal("sjis"))
		Expect(file.OutputDir).To(Equal("zaim"))
		Expect(file.PromptForDownload).NotTo(BeNil())
		Expect(*file.PromptForDownload).To(BeFalse())
		Expect(file.Timeouts.Element).To(Equal(15 * time.Second))
		Expect(file.Timeouts.Download).To(Equal(time.Minute))
		Expect(file.Site.LoginURL).To(Equal("http://127.0.0.1:8080/login"))

		resolved, err := exportconfig.Resolve(mustParse(), file, "/home/me", noPrompt)
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.LoginURL).To(Equal("http://127.0.0.1:8080/login"))
		Expect(resolved.Timeouts.Element).To(Equal(15 * time.Second))
	})

	It("fails on a missing file", func() {
		_, err := exportconfig.LoadFile("/nonexistent/zaim-export.yaml")
		Expect(err).To(MatchError(ContainSubstring("reading config")))
	})
})
