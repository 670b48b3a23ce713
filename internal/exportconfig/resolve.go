package exportconfig

import (
	"fmt"
	"path/filepath"

	"github.com/lisanmuaddib/zaim-export/pkg/exporter"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
)

// Resolved is everything the command needs besides credentials.
type Resolved struct {
	Run      exporter.RunConfig
	Timeouts exporter.Timeouts
	// Site overrides; empty fields keep the environment's values
	LoginURL string
	MoneyURL string
}

// Resolve merges the command line over the defaults file and builds the run.
// homeDir anchors the output directory at <home>/Downloads/<outputdir>.
// prompt is consulted only when --ask-totp is set and no code was given.
func Resolve(args *Args, file *File, homeDir string, prompt PasscodePrompter) (*Resolved, error) {
	if file == nil {
		file = &File{}
	}

	charsetName := args.Charset
	if !args.IsSet("charset") && file.Charset != "" {
		charsetName = file.Charset
	}
	charset, err := zaim.ParseCharset(charsetName)
	if err != nil {
		return nil, err
	}

	subdir := args.OutputSubdir
	if !args.IsSet("outputdir") && file.OutputDir != "" {
		subdir = file.OutputDir
	}

	promptForDownload := args.PromptForDownload
	if !args.IsSet("prompt_for_download") && file.PromptForDownload != nil {
		promptForDownload = *file.PromptForDownload
	}

	passcode := args.Totp
	if passcode == "" && args.AskTotp {
		if prompt == nil {
			return nil, fmt.Errorf("passcode prompt is not available")
		}
		passcode, err = prompt()
		if err != nil {
			return nil, err
		}
	}

	return &Resolved{
		Run: exporter.RunConfig{
			Range:             args.Range,
			Passcode:          passcode,
			Charset:           charset,
			OutputDir:         filepath.Join(homeDir, "Downloads", subdir),
			PromptForDownload: promptForDownload,
		},
		Timeouts: file.Timeouts,
		LoginURL: file.Site.LoginURL,
		MoneyURL: file.Site.MoneyURL,
	}, nil
}
