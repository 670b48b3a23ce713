// Package browser drives a single headless browser session for the exporter.
// The Session interface is what the export protocol talks to; ChromeLauncher
// provides the chromedp-backed implementation.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// Strategy selects how a Selector's value is resolved in the page.
type Strategy int

const (
	// StrategyID matches the element id attribute
	StrategyID Strategy = iota
	// StrategyQuery matches a CSS selector
	StrategyQuery
	// StrategyXPath matches an XPath expression
	StrategyXPath
)

// Selector locates one element on a page.
type Selector struct {
	Value    string
	Strategy Strategy
}

// ByID selects the element with the given id.
func ByID(id string) Selector { return Selector{Value: id, Strategy: StrategyID} }

// ByQuery selects the first element matching a CSS selector.
func ByQuery(query string) Selector { return Selector{Value: query, Strategy: StrategyQuery} }

// ByXPath selects the first element matching an XPath expression.
func ByXPath(path string) Selector { return Selector{Value: path, Strategy: StrategyXPath} }

// ByName selects the first element with the given name attribute.
func ByName(name string) Selector {
	return Selector{Value: fmt.Sprintf("[name='%s']", name), Strategy: StrategyQuery}
}

func (s Selector) String() string {
	switch s.Strategy {
	case StrategyID:
		return "#" + s.Value
	case StrategyXPath:
		return "xpath:" + s.Value
	default:
		return s.Value
	}
}

// jsLookup returns a JavaScript expression evaluating to the selected element or null.
func (s Selector) jsLookup() string {
	quoted, _ := json.Marshal(s.Value)
	switch s.Strategy {
	case StrategyID:
		return fmt.Sprintf("document.getElementById(%s)", quoted)
	case StrategyXPath:
		return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", quoted)
	default:
		return fmt.Sprintf("document.querySelector(%s)", quoted)
	}
}

// Options configure a launched browser.
type Options struct {
	// DownloadDir receives every download of the session
	DownloadDir string
	// ProfileDir is the user data directory; preferences are written into it
	ProfileDir string
	// Headless runs the browser without a window
	Headless bool
	// PromptForDownload keeps the browser's native download confirmation
	PromptForDownload bool
}

// Session is one running browser owned by a single caller. Every blocking
// method honors ctx cancellation and deadlines.
type Session interface {
	// Navigate loads url and waits for the page load event
	Navigate(ctx context.Context, url string) error
	// SendKeys types value into the selected element
	SendKeys(ctx context.Context, sel Selector, value string) error
	// Click clicks the selected element once it is visible
	Click(ctx context.Context, sel Selector) error
	// WaitVisible blocks until the selected element is visible
	WaitVisible(ctx context.Context, sel Selector) error
	// SelectOption picks the option whose value exactly equals value
	SelectOption(ctx context.Context, sel Selector, value string) error
	// Close terminates the browser; it is safe to call more than once
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}
