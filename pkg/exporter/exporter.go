// Package exporter runs the Zaim CSV export: log in, request the export for a
// date range, wait for the browser download and move it to a stable name.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lisanmuaddib/zaim-export/pkg/browser"
	"github.com/lisanmuaddib/zaim-export/pkg/staging"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
	"github.com/sirupsen/logrus"
)

// Protocol steps, used in errors and log fields
const (
	StepConfig     = "config"
	StepPrepare    = "prepare"
	StepLaunch     = "launch"
	StepLogin      = "login"
	StepPasscode   = "passcode"
	StepNavigate   = "navigate"
	StepOpenPanel  = "open_export_panel"
	StepExportForm = "export_form"
	StepSubmit     = "submit"
	StepDownload   = "download"
	StepMove       = "move"
)

// Exporter drives one browser through the export protocol per call to Export.
type Exporter struct {
	launcher    browser.Launcher
	credentials zaim.Credentials
	site        zaim.Site
	timeouts    Timeouts
	recorder    RunRecorder
	logger      *logrus.Logger
	stagingRoot string
	rescueDir   string
	now         func() time.Time
}

// New creates an Exporter. Credentials are checked by Export, not here, so a
// missing credential is reported the same way on every path.
func New(config Config) (*Exporter, error) {
	if config.Launcher == nil {
		return nil, fmt.Errorf("exporter: browser launcher is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("exporter: logger is required")
	}
	site := config.Site
	if site.LoginURL == "" || site.MoneyURL == "" {
		site = zaim.DefaultSite()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	rescueDir := config.RescueDir
	if rescueDir == "" {
		rescueDir = os.TempDir()
	}

	return &Exporter{
		launcher:    config.Launcher,
		credentials: config.Credentials,
		site:        site,
		timeouts:    config.Timeouts.withDefaults(),
		recorder:    config.Recorder,
		logger:      config.Logger,
		stagingRoot: config.StagingRoot,
		rescueDir:   rescueDir,
		now:         now,
	}, nil
}

// Export performs one run. It returns a *zaim.Error for every fatal failure.
// A failed final move is not fatal: the Result carries MoveErr instead.
// The browser and the staging directory are released before Export returns.
func (e *Exporter) Export(ctx context.Context, run RunConfig) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: e.now(),
	}
	log := e.logger.WithFields(logrus.Fields{
		"run_id": result.RunID,
		"start":  run.Range.Start(),
		"end":    run.Range.End(),
	})

	run, err := e.validate(run)
	if err != nil {
		log.WithError(err).Error("Invalid export configuration")
		return nil, err
	}

	err = e.export(ctx, log, run, result)
	result.FinishedAt = e.now()
	e.record(ctx, log, run, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validate checks run and returns it with the charset normalized.
func (e *Exporter) validate(run RunConfig) (RunConfig, error) {
	if err := e.credentials.Validate(); err != nil {
		return run, err
	}
	charset, err := zaim.ParseCharset(string(run.Charset))
	if err != nil {
		return run, err
	}
	run.Charset = charset
	if run.OutputDir == "" {
		return run, zaim.NewError(zaim.ErrCodeConfig, StepConfig, "output directory is required", nil)
	}
	return run, nil
}

// export acquires the staging directory and the browser, releasing both in
// reverse order on every return path.
func (e *Exporter) export(ctx context.Context, log *logrus.Entry, run RunConfig, result *Result) error {
	if err := os.MkdirAll(run.OutputDir, 0o755); err != nil {
		return e.fail(log, zaim.NewError(zaim.ErrCodeFilesystem, StepPrepare, "failed to create output directory", err))
	}

	stage, err := staging.New(e.stagingRoot, e.logger)
	if err != nil {
		return e.fail(log, zaim.NewError(zaim.ErrCodeFilesystem, StepPrepare, "failed to create staging directory", err))
	}
	defer func() {
		if err := stage.Remove(); err != nil {
			log.WithError(err).Error("Failed to remove staging directory")
		}
	}()

	session, err := e.launcher.Launch(ctx, browser.Options{
		DownloadDir:       stage.Path(),
		ProfileDir:        stage.ProfileDir(),
		Headless:          true,
		PromptForDownload: run.PromptForDownload,
	})
	if err != nil {
		return e.fail(log, zaim.NewError(zaim.ErrCodeBrowser, StepLaunch, "failed to launch browser", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser")
		}
	}()

	staged, err := e.drive(ctx, log, session, stage, run)
	if err != nil {
		return e.fail(log, err)
	}
	result.StagedFile = filepath.Base(staged)

	e.relocate(log, staged, run, result)
	return nil
}

// drive runs the browser steps from login through download and returns the
// path of the completed download in staging.
func (e *Exporter) drive(ctx context.Context, log *logrus.Entry, session browser.Session, stage *staging.Dir, run RunConfig) (string, error) {
	log.Info("Logging in")
	if err := e.navigate(ctx, session, StepLogin, e.site.LoginURL, "failed to open login page"); err != nil {
		return "", err
	}
	if err := e.sendKeys(ctx, session, StepLogin, zaim.EmailField, e.credentials.ID, "failed to enter account id"); err != nil {
		return "", err
	}
	if err := e.sendKeys(ctx, session, StepLogin, zaim.PasswordField, e.credentials.Password, "failed to enter password"); err != nil {
		return "", err
	}
	if err := e.click(ctx, session, StepLogin, zaim.LoginButton, "failed to submit login form"); err != nil {
		return "", err
	}

	if err := e.waitVisible(ctx, session, StepPasscode, zaim.PasscodeField); err != nil {
		return "", err
	}
	if run.Passcode != "" {
		log.Debug("Submitting one-time passcode")
		if err := e.sendKeys(ctx, session, StepPasscode, zaim.PasscodeField, run.Passcode, "failed to enter passcode"); err != nil {
			return "", err
		}
		if err := e.click(ctx, session, StepPasscode, zaim.PasscodeSubmit, "failed to submit passcode"); err != nil {
			return "", err
		}
	} else {
		log.Debug("No passcode supplied, skipping passcode submission")
	}

	if err := sleep(ctx, e.timeouts.Settle); err != nil {
		return "", canceledError(StepNavigate, err)
	}
	if err := e.navigate(ctx, session, StepNavigate, e.site.MoneyURL, "failed to open data page"); err != nil {
		return "", err
	}

	if err := e.waitVisible(ctx, session, StepOpenPanel, zaim.DownloadToggle); err != nil {
		return "", err
	}
	if err := e.click(ctx, session, StepOpenPanel, zaim.DownloadToggle, "failed to open export panel"); err != nil {
		return "", err
	}

	if err := e.waitVisible(ctx, session, StepExportForm, zaim.StartYearSelect); err != nil {
		return "", err
	}
	values := run.Range.Values()
	for i, sel := range zaim.DateSelects() {
		if err := e.selectOption(ctx, session, StepExportForm, sel, values[i], fmt.Sprintf("failed to select %q", values[i])); err != nil {
			return "", err
		}
	}
	if err := e.selectOption(ctx, session, StepExportForm, zaim.CharsetSelect, string(run.Charset), "failed to select charset"); err != nil {
		return "", err
	}

	if err := e.click(ctx, session, StepSubmit, zaim.DownloadSubmit, "failed to submit export form"); err != nil {
		return "", err
	}

	log.Info("Download started. Waiting for the file to be downloaded...")
	staged, err := stage.WaitForDownload(ctx, e.timeouts.PollInterval, e.timeouts.Download)
	switch {
	case err == nil:
		return staged, nil
	case errors.Is(err, staging.ErrDownloadTimeout):
		return "", zaim.NewError(zaim.ErrCodeDownloadTimeout, StepDownload,
			fmt.Sprintf("download timed out after %s", e.timeouts.Download), err)
	case ctx.Err() != nil:
		return "", canceledError(StepDownload, ctx.Err())
	}
	return "", zaim.NewError(zaim.ErrCodeFilesystem, StepDownload, "failed while waiting for download", err)
}

// relocate moves the staged file to its final name. Failures are logged and
// reported through result, and the file is copied to the rescue directory so
// removing staging does not lose it.
func (e *Exporter) relocate(log *logrus.Entry, staged string, run RunConfig, result *Result) {
	dest, err := placeOutput(staged, run.OutputDir, run.Range, e.now())
	if err == nil {
		result.OutputPath = dest
		log.WithField("output_path", dest).Info("File downloaded")
		return
	}

	result.MoveErr = zaim.NewError(zaim.ErrCodeMove, StepMove, "failed to rename or move file", err)
	log.WithError(result.MoveErr).Error("Failed to rename or move file")

	rescue := filepath.Join(e.rescueDir, fmt.Sprintf("zaim-export-rescue-%s.csv", result.RunID))
	if err := staging.Copy(staged, rescue); err != nil {
		log.WithError(err).Error("Failed to preserve downloaded file")
		return
	}
	result.RescuedPath = rescue
	log.WithField("rescue_path", rescue).Warn("Downloaded file preserved at rescue location")
}

func (e *Exporter) navigate(ctx context.Context, session browser.Session, step, url, message string) error {
	return e.bounded(ctx, e.timeouts.PageLoad, zaim.ErrCodeBrowser, step, message, func(ctx context.Context) error {
		return session.Navigate(ctx, url)
	})
}

func (e *Exporter) sendKeys(ctx context.Context, session browser.Session, step string, sel browser.Selector, value, message string) error {
	return e.bounded(ctx, e.timeouts.Element, zaim.ErrCodeElementTimeout, step, message, func(ctx context.Context) error {
		return session.SendKeys(ctx, sel, value)
	})
}

func (e *Exporter) click(ctx context.Context, session browser.Session, step string, sel browser.Selector, message string) error {
	return e.bounded(ctx, e.timeouts.Element, zaim.ErrCodeElementTimeout, step, message, func(ctx context.Context) error {
		return session.Click(ctx, sel)
	})
}

func (e *Exporter) selectOption(ctx context.Context, session browser.Session, step string, sel browser.Selector, value, message string) error {
	return e.bounded(ctx, e.timeouts.Element, zaim.ErrCodeElementTimeout, step, message, func(ctx context.Context) error {
		return session.SelectOption(ctx, sel, value)
	})
}

func (e *Exporter) waitVisible(ctx context.Context, session browser.Session, step string, sel browser.Selector) error {
	return e.bounded(ctx, e.timeouts.Element, zaim.ErrCodeElementTimeout, step,
		fmt.Sprintf("expected field %s not found", sel), func(ctx context.Context) error {
			return session.WaitVisible(ctx, sel)
		})
}

// bounded runs one browser action with limit as its deadline. An expired
// limit fails with timeoutCode, an interrupted run with ErrCodeCanceled and
// anything else with ErrCodeBrowser.
func (e *Exporter) bounded(ctx context.Context, limit time.Duration, timeoutCode, step, message string, action func(context.Context) error) error {
	actionCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err := action(actionCtx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return canceledError(step, ctx.Err())
	case errors.Is(err, context.DeadlineExceeded):
		return zaim.NewError(timeoutCode, step, fmt.Sprintf("timeout after %s: %s", limit, message), err)
	}
	return browserError(step, message, err)
}

func (e *Exporter) fail(log *logrus.Entry, err error) error {
	fields := logrus.Fields{"code": zaim.ErrorCode(err)}
	var zerr *zaim.Error
	if errors.As(err, &zerr) {
		fields["step"] = zerr.Step
	}
	log.WithFields(fields).WithError(err).Error("Export failed")
	return err
}

// record hands the outcome to the recorder. Recording problems never change
// the run's result.
func (e *Exporter) record(ctx context.Context, log *logrus.Entry, run RunConfig, result *Result, runErr error) {
	if e.recorder == nil {
		return
	}

	rec := RunRecord{
		ID:         result.RunID,
		Range:      run.Range,
		Charset:    run.Charset,
		OutputPath: result.OutputPath,
		Status:     RunStatusSucceeded,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	switch {
	case runErr != nil:
		rec.Status = RunStatusFailed
		rec.ErrorCode = zaim.ErrorCode(runErr)
		rec.Error = runErr.Error()
	case result.MoveErr != nil:
		rec.Status = RunStatusMoveFailed
		rec.ErrorCode = zaim.ErrCodeMove
		rec.Error = result.MoveErr.Error()
		rec.OutputPath = result.RescuedPath
	}

	if err := e.recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		log.WithError(err).Warn("Failed to record export run")
	}
}

func browserError(step, message string, err error) error {
	return zaim.NewError(zaim.ErrCodeBrowser, step, message, err)
}

func canceledError(step string, err error) error {
	return zaim.NewError(zaim.ErrCodeCanceled, step, "export interrupted", err)
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
