package zaim_test

import (
	"github.com/lisanmuaddib/zaim-export/pkg/browser"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseCharset", func() {
	DescribeTable("accepts the offered charsets",
		func(in string, want zaim.Charset) {
			Expect(zaim.ParseCharset(in)).To(Equal(want))
		},
		Entry("default", "", zaim.CharsetUTF8),
		Entry("utf8", "utf8", zaim.CharsetUTF8),
		Entry("sjis", "sjis", zaim.CharsetShiftJIS),
		Entry("upper case", "SJIS", zaim.CharsetShiftJIS),
	)

	It("rejects anything else", func() {
		_, err := zaim.ParseCharset("euc-jp")
		Expect(zaim.IsError(err, zaim.ErrCodeConfig)).To(BeTrue())
	})
})

var _ = Describe("DateSelects", func() {
	It("lists the six date controls in form order", func() {
		Expect(zaim.DateSelects()).To(Equal([]browser.Selector{
			browser.ByName("start_year"),
			browser.ByName("start_month"),
			browser.ByName("start_day"),
			browser.ByName("end_year"),
			browser.ByName("end_month"),
			browser.ByName("end_day"),
		}))
	})
})
