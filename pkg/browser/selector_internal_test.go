package browser

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Selector", func() {
	It("builds a name selector as a CSS query", func() {
		Expect(ByName("start_year")).To(Equal(Selector{Value: "[name='start_year']", Strategy: StrategyQuery}))
	})

	DescribeTable("renders a readable form",
		func(sel Selector, want string) {
			Expect(sel.String()).To(Equal(want))
		},
		Entry("id", ByID("passcode"), "#passcode"),
		Entry("query", ByQuery("[href='#collapseDownload']"), "[href='#collapseDownload']"),
		Entry("xpath", ByXPath("/html/body"), "xpath:/html/body"),
	)

	DescribeTable("resolves in page scripts",
		func(sel Selector, want string) {
			Expect(sel.jsLookup()).To(Equal(want))
		},
		Entry("id", ByID("MoneyCharset"), `document.getElementById("MoneyCharset")`),
		Entry("query", ByName("end_day"), `document.querySelector("[name='end_day']")`),
		Entry("xpath", ByXPath("/html/body/form/input[3]"),
			`document.evaluate("/html/body/form/input[3]", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`),
	)
})
