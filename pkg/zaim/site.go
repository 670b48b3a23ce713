package zaim

import (
	"fmt"
	"strings"

	"github.com/lisanmuaddib/zaim-export/pkg/browser"
)

// Charset is the character set of the exported CSV.
type Charset string

const (
	CharsetUTF8     Charset = "utf8"
	CharsetShiftJIS Charset = "sjis"
)

// DefaultCharset is used when no charset is requested.
const DefaultCharset = CharsetUTF8

// Charsets lists every value the export form offers.
var Charsets = []Charset{CharsetUTF8, CharsetShiftJIS}

// ParseCharset maps a flag value onto a Charset.
func ParseCharset(s string) (Charset, error) {
	if s == "" {
		return DefaultCharset, nil
	}
	for _, c := range Charsets {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", NewError(ErrCodeConfig, "", fmt.Sprintf("unknown charset %q (available: utf8, sjis)", s), nil)
}

// Page elements the export drives, in the order they are used
var (
	EmailField      = browser.ByID("email")
	PasswordField   = browser.ByID("password")
	LoginButton     = browser.ByQuery(".id-zaim-button__subtext")
	PasscodeField   = browser.ByID("passcode")
	PasscodeSubmit  = browser.ByXPath("/html/body/div/main/div/div[1]/div[2]/div[2]/form/input[3]")
	DownloadToggle  = browser.ByQuery("[href='#collapseDownload']")
	DownloadSubmit  = browser.ByQuery("input[type='submit'].btn.btn-success")
	CharsetSelect   = browser.ByID("MoneyCharset")
	StartYearSelect = browser.ByName("start_year")
)

// DateSelects returns the six date-range selection controls in form order.
func DateSelects() []browser.Selector {
	return []browser.Selector{
		StartYearSelect,
		browser.ByName("start_month"),
		browser.ByName("start_day"),
		browser.ByName("end_year"),
		browser.ByName("end_month"),
		browser.ByName("end_day"),
	}
}
