package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// ChromeLauncher launches Chrome through chromedp.
type ChromeLauncher struct {
	// ExecPath overrides the browser binary; empty uses chromedp's lookup
	ExecPath string
	Logger   *logrus.Logger
}

// NewChromeLauncher creates a launcher that logs browser events to logger.
func NewChromeLauncher(logger *logrus.Logger) *ChromeLauncher {
	return &ChromeLauncher{Logger: logger}
}

type chromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *logrus.Logger
	closeOnce   sync.Once
	closeErr    error
}

// Launch starts a browser process configured by opts and returns once it is
// ready to accept commands.
func (l *ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if opts.ProfileDir != "" {
		if err := WritePreferences(opts.ProfileDir, PreferencesFor(opts)); err != nil {
			return nil, fmt.Errorf("failed to write browser preferences: %w", err)
		}
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	// chromedp disables safe browsing updates by default
	allocOpts = append(allocOpts, chromedp.Flag("safebrowsing-disable-auto-update", false))
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}
	if l.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.ExecPath))
	}

	l.Logger.WithFields(logrus.Fields{
		"headless":            opts.Headless,
		"download_dir":        opts.DownloadDir,
		"profile_dir":         opts.ProfileDir,
		"prompt_for_download": opts.PromptForDownload,
	}).Debug("Launching browser")

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.Logger.WithField("source", "chromedp").Debugf),
		chromedp.WithErrorf(l.Logger.WithField("source", "chromedp").Errorf),
	)

	// The first Run allocates the browser and its first tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if opts.DownloadDir != "" && !opts.PromptForDownload {
		err := chromedp.Run(tabCtx, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir).
			WithEventsEnabled(true))
		if err != nil {
			_ = chromedp.Cancel(tabCtx)
			cancelTab()
			cancelAlloc()
			return nil, fmt.Errorf("failed to set download behavior: %w", err)
		}
	}

	return &chromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		logger:      l.Logger,
	}, nil
}

// run executes actions on the tab while honoring the caller's ctx. Errors caused
// by the caller's deadline or cancellation are reported as ctx.Err().
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func queryOption(sel Selector) chromedp.QueryOption {
	switch sel.Strategy {
	case StrategyID:
		return chromedp.ByID
	case StrategyXPath:
		return chromedp.BySearch
	default:
		return chromedp.ByQuery
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.WithField("url", url).Debug("Navigating")
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) SendKeys(ctx context.Context, sel Selector, value string) error {
	return s.run(ctx, chromedp.SendKeys(sel.Value, value, queryOption(sel)))
}

func (s *chromeSession) Click(ctx context.Context, sel Selector) error {
	s.logger.WithField("selector", sel.String()).Debug("Clicking element")
	return s.run(ctx, chromedp.Click(sel.Value, queryOption(sel)))
}

func (s *chromeSession) WaitVisible(ctx context.Context, sel Selector) error {
	return s.run(ctx, chromedp.WaitVisible(sel.Value, queryOption(sel)))
}

const selectOptionScript = `(function(el, value) {
	if (!el || !el.options) { return false; }
	for (const opt of el.options) {
		if (opt.value === value) {
			opt.selected = true;
			el.value = value;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	return false;
})(%s, %s)`

func (s *chromeSession) SelectOption(ctx context.Context, sel Selector, value string) error {
	quoted, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode option value: %w", err)
	}

	var found bool
	script := fmt.Sprintf(selectOptionScript, sel.jsLookup(), quoted)
	if err := s.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("option %q not found in %s", value, sel)
	}

	s.logger.WithFields(logrus.Fields{
		"selector": sel.String(),
		"value":    value,
	}).Debug("Selected option")
	return nil
}

// Close shuts the browser down gracefully, then releases the allocator.
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancelTab()
		s.cancelAlloc()
	})
	return s.closeErr
}
