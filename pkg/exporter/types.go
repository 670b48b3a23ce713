package exporter

import (
	"context"
	"time"

	"github.com/lisanmuaddib/zaim-export/pkg/browser"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
	"github.com/sirupsen/logrus"
)

// Default waits of the export protocol
const (
	// DefaultElementTimeout bounds each wait for a page element to become visible
	DefaultElementTimeout = 10 * time.Second
	// DefaultSettleDelay is the pause after login before leaving the login flow
	DefaultSettleDelay = 3 * time.Second
	// DefaultPollInterval is how often the staging directory is checked
	DefaultPollInterval = 1 * time.Second
	// DefaultDownloadTimeout bounds the wait for the exported file
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultPageLoadTimeout bounds each page navigation
	DefaultPageLoadTimeout = 30 * time.Second
)

// Timeouts holds the waits of one run. Zero fields fall back to the defaults.
type Timeouts struct {
	Element      time.Duration `yaml:"element"`
	Settle       time.Duration `yaml:"settle"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Download     time.Duration `yaml:"download"`
	PageLoad     time.Duration `yaml:"page_load"`
}

// DefaultTimeouts returns the standard waits.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Element:      DefaultElementTimeout,
		Settle:       DefaultSettleDelay,
		PollInterval: DefaultPollInterval,
		Download:     DefaultDownloadTimeout,
		PageLoad:     DefaultPageLoadTimeout,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Element <= 0 {
		t.Element = d.Element
	}
	if t.Settle <= 0 {
		t.Settle = d.Settle
	}
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.Download <= 0 {
		t.Download = d.Download
	}
	if t.PageLoad <= 0 {
		t.PageLoad = d.PageLoad
	}
	return t
}

// DateRange is the export period. Each field is matched verbatim against the
// option values of the site's date selects, e.g. "2020", "01", "31".
type DateRange struct {
	StartYear  string
	StartMonth string
	StartDay   string
	EndYear    string
	EndMonth   string
	EndDay     string
}

// Start returns the start date as YYYYMMDD.
func (r DateRange) Start() string {
	return r.StartYear + r.StartMonth + r.StartDay
}

// End returns the end date as YYYYMMDD.
func (r DateRange) End() string {
	return r.EndYear + r.EndMonth + r.EndDay
}

// Values returns the six fields in form order.
func (r DateRange) Values() []string {
	return []string{r.StartYear, r.StartMonth, r.StartDay, r.EndYear, r.EndMonth, r.EndDay}
}

// RunConfig describes one export.
type RunConfig struct {
	Range DateRange
	// Passcode is the one-time code; empty skips passcode submission
	Passcode string
	Charset  zaim.Charset
	// OutputDir is where the final file is placed; created if absent
	OutputDir string
	// PromptForDownload enables the browser's download confirmation
	PromptForDownload bool
}

// Result describes a completed export.
type Result struct {
	RunID string
	// OutputPath is the final location; empty when the move failed
	OutputPath string
	// StagedFile is the name the site gave the download
	StagedFile string
	// MoveErr is set when the file downloaded but could not be moved
	MoveErr error
	// RescuedPath is where the file was preserved after a failed move
	RescuedPath string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// RunStatus is the outcome recorded for a run.
type RunStatus string

const (
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusFailed     RunStatus = "failed"
	RunStatusMoveFailed RunStatus = "move_failed"
)

// RunRecord is what a RunRecorder receives once a run has finished.
type RunRecord struct {
	ID         string
	Range      DateRange
	Charset    zaim.Charset
	OutputPath string
	Status     RunStatus
	ErrorCode  string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRecorder persists the outcome of runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, record RunRecord) error
}

// Config holds the collaborators of an Exporter.
type Config struct {
	Launcher    browser.Launcher
	Credentials zaim.Credentials
	Site        zaim.Site
	Timeouts    Timeouts
	// Recorder is optional
	Recorder RunRecorder
	Logger   *logrus.Logger
	// StagingRoot is where staging directories are created; empty uses the system temp dir
	StagingRoot string
	// RescueDir receives downloads whose final move failed; empty uses the system temp dir
	RescueDir string
	// Now defaults to time.Now
	Now func() time.Time
}
