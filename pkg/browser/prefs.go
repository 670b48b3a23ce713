package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Preferences is the subset of Chrome's profile preferences the exporter sets.
type Preferences struct {
	Download     DownloadPreferences     `json:"download"`
	SafeBrowsing SafeBrowsingPreferences `json:"safebrowsing"`
}

type DownloadPreferences struct {
	DefaultDirectory  string `json:"default_directory"`
	PromptForDownload bool   `json:"prompt_for_download"`
	DirectoryUpgrade  bool   `json:"directory_upgrade"`
}

type SafeBrowsingPreferences struct {
	Enabled bool `json:"enabled"`
}

// PreferencesFor derives profile preferences from launch options.
func PreferencesFor(opts Options) Preferences {
	return Preferences{
		Download: DownloadPreferences{
			DefaultDirectory:  opts.DownloadDir,
			PromptForDownload: opts.PromptForDownload,
			DirectoryUpgrade:  false,
		},
		SafeBrowsing: SafeBrowsingPreferences{Enabled: true},
	}
}

// WritePreferences writes prefs as the Default profile's Preferences file
// under profileDir, creating directories as needed.
func WritePreferences(profileDir string, prefs Preferences) error {
	dir := filepath.Join(profileDir, "Default")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "Preferences"), data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
