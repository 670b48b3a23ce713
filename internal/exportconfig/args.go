// Package exportconfig turns the command line, an optional YAML defaults file
// and the terminal into the RunConfig of one export.
package exportconfig

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/lisanmuaddib/zaim-export/pkg/exporter"
	"github.com/lisanmuaddib/zaim-export/pkg/logging"
)

// DefaultOutputSubdir is the folder under ~/Downloads that receives exports.
const DefaultOutputSubdir = "selenium_downloads"

// ErrUsage is returned for malformed command lines; usage has already been printed.
var ErrUsage = errors.New("usage error")

// Args is the parsed command line.
type Args struct {
	Range             exporter.DateRange
	Totp              string
	AskTotp           bool
	Charset           string
	OutputSubdir      string
	PromptForDownload bool
	Verbose           bool
	ConfigFile        string
	LogFormat         string

	// set records which flags were given explicitly
	set map[string]bool
}

// IsSet reports whether the named flag appeared on the command line.
func (a *Args) IsSet(name string) bool {
	return a.set[name]
}

const usageHeader = `Automate Zaim login and data download.
Required environment variables: ZAIM_ID, ZAIM_PASSWORD

Usage: zaim-export [flags] START_YEAR START_MONTH START_DAY END_YEAR END_MONTH END_DAY
  e.g. zaim-export -c sjis 2020 01 01 2020 12 31

Flags:
`

// Parse parses args (without the program name). Flags may appear before,
// between or after the six positional date fields.
func Parse(args []string, output io.Writer) (*Args, error) {
	a := &Args{set: map[string]bool{}}

	fs := flag.NewFlagSet("zaim-export", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usageHeader)
		fs.PrintDefaults()
	}

	fs.StringVar(&a.Totp, "totp", "", "Two-factor authentication code. Required if TOTP is enabled")
	fs.StringVar(&a.Totp, "t", "", "shorthand for --totp")
	fs.BoolVar(&a.AskTotp, "ask-totp", false, "Prompt for the two-factor code on the terminal")
	fs.StringVar(&a.Charset, "charset", "utf8", "Character set for the output file. Available charsets: utf8, sjis")
	fs.StringVar(&a.Charset, "c", "utf8", "shorthand for --charset")
	fs.StringVar(&a.OutputSubdir, "outputdir", DefaultOutputSubdir, "Output directory under ~/Downloads")
	fs.StringVar(&a.OutputSubdir, "o", DefaultOutputSubdir, "shorthand for --outputdir")
	fs.BoolVar(&a.PromptForDownload, "prompt_for_download", false, "Enable prompt for download confirmation")
	fs.BoolVar(&a.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&a.Verbose, "v", false, "shorthand for --verbose")
	fs.StringVar(&a.ConfigFile, "config", "", "YAML file with default settings")
	fs.StringVar(&a.LogFormat, "log-format", logging.FormatColor, "Log output format: color or json")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, ErrUsage
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		a.set[canonicalFlag(f.Name)] = true
	})

	if len(positional) != 6 {
		fmt.Fprintf(output, "expected 6 date arguments, got %d\n", len(positional))
		fs.Usage()
		return nil, ErrUsage
	}
	a.Range = exporter.DateRange{
		StartYear:  positional[0],
		StartMonth: positional[1],
		StartDay:   positional[2],
		EndYear:    positional[3],
		EndMonth:   positional[4],
		EndDay:     positional[5],
	}

	if a.LogFormat != logging.FormatColor && a.LogFormat != logging.FormatJSON {
		fmt.Fprintf(output, "unknown log format %q\n", a.LogFormat)
		return nil, ErrUsage
	}
	return a, nil
}

func canonicalFlag(name string) string {
	switch name {
	case "t":
		return "totp"
	case "c":
		return "charset"
	case "o":
		return "outputdir"
	case "v":
		return "verbose"
	}
	return name
}
