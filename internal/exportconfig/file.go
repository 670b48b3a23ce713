package exportconfig

import (
	"fmt"
	"os"

	"github.com/lisanmuaddib/zaim-export/pkg/exporter"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML defaults file. Command-line flags take
// precedence over every value in it.
//
//	charset: sjis
//	outputdir: zaim
//	prompt_for_download: false
//	timeouts:
//	  element: 10s
//	  settle: 3s
//	  poll_interval: 1s
//	  download: 30s
//	site:
//	  login_url: https://zaim.net/user_session/new
//	  money_url: https://content.zaim.net/home/money
type File struct {
	Charset           string            `yaml:"charset"`
	OutputDir         string            `yaml:"outputdir"`
	PromptForDownload *bool             `yaml:"prompt_for_download"`
	Timeouts          exporter.Timeouts `yaml:"timeouts"`
	Site              struct {
		LoginURL string `yaml:"login_url"`
		MoneyURL string `yaml:"money_url"`
	} `yaml:"site"`
}

// LoadFile reads a defaults file. An empty path returns an empty File.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &f, nil
}
