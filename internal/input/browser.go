// Package input - browser.go
//
// This file implements the Browser dispatcher that presses hotbar keys inside
// a browser-hosted game through chromedp.
//
// Browser Architecture:
// The Browser uses nested contexts for proper resource management:
//   - allocCtx: Allocator context, either a remote allocator attached to an
//     already running Chrome (--remote-debugging-port) or an exec allocator
//     that launches a visible Chrome window
//   - ctx: Browser context for page operations
// Both contexts have cancel functions for graceful cleanup.
//
// Timeout Strategy:
//   - Navigation: 60 seconds (slow network tolerance)
//   - Key event: KeyTimeout (default 500ms), Emit runs inside the engine's
//     tick critical section and must not block it for long
package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"macrofox/internal/logging"
)

// DefaultKeyTimeout bounds a single key event round trip.
const DefaultKeyTimeout = 500 * time.Millisecond

// ErrBrowserClosed is returned by Emit before Start or after Close.
var ErrBrowserClosed = errors.New("browser context is invalid")

// BrowserOptions configures how the Browser obtains a page.
type BrowserOptions struct {
	RemoteURL  string        // DevTools websocket/http URL of a running Chrome; empty launches one
	GameURL    string        // Page to open when launching; ignored for remote attach
	Headless   bool          // Launch without a window
	KeyTimeout time.Duration // Per-key timeout, DefaultKeyTimeout when zero
	Logger     logging.Logger
}

// Browser dispatches hotbar keys as CDP key events.
//
// Lifecycle:
//  1. NewBrowser(opts): create, nothing started
//  2. Start(ctx): create allocator and browser contexts, navigate when launching
//  3. Emit(slot): press the bound digit key in the active tab
//  4. Close(): cancel contexts, terminating a launched browser
type Browser struct {
	opts        BrowserOptions
	logger      logging.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	// run executes chromedp actions; replaced in tests
	run func(ctx context.Context, actions ...chromedp.Action) error
}

// NewBrowser creates a browser dispatcher
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.KeyTimeout <= 0 {
		opts.KeyTimeout = DefaultKeyTimeout
	}
	return &Browser{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		run:    chromedp.Run,
	}
}

// Start creates the chromedp contexts and, when launching, opens the game page.
//
// Parameters:
//   - parent: lifetime of the browser; cancelling it tears the browser down
//
// Returns:
//   - error: allocation or navigation failure, nil on success
func (b *Browser) Start(parent context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx != nil && b.ctx.Err() == nil {
		return nil
	}

	var allocCtx context.Context
	if b.opts.RemoteURL != "" {
		allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(parent, b.opts.RemoteURL)
		b.logger.Info("Attaching to running browser at %s", b.opts.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.opts.Headless),
			chromedp.Flag("disable-gpu", false),
			chromedp.Flag("enable-automation", false),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(1280, 800),
		)
		allocCtx, b.allocCancel = chromedp.NewExecAllocator(parent, opts...)
		b.logger.Info("Browser allocator context created")
	}

	b.ctx, b.cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		b.logger.Debug(format, args...)
	}))

	if b.opts.RemoteURL != "" || b.opts.GameURL == "" {
		// First Run attaches to (or opens) a target without navigating
		if err := b.run(b.ctx); err != nil {
			b.closeLocked()
			return fmt.Errorf("attach browser: %w", err)
		}
		return nil
	}

	b.logger.Info("Navigating to %s", b.opts.GameURL)
	navCtx, navCancel := context.WithTimeout(b.ctx, 60*time.Second)
	defer navCancel()

	if err := b.run(navCtx, chromedp.Navigate(b.opts.GameURL)); err != nil {
		b.logger.Error("Navigation error: %v", err)
		b.closeLocked()
		return fmt.Errorf("navigate %s: %w", b.opts.GameURL, err)
	}

	b.logger.Info("Navigation completed successfully")
	return nil
}

// Emit presses the digit key bound to slot in the active tab
func (b *Browser) Emit(slot int) error {
	key, err := KeyForSlot(slot)
	if err != nil {
		return err
	}

	b.mu.RLock()
	browserCtx := b.ctx
	b.mu.RUnlock()

	if browserCtx == nil || browserCtx.Err() != nil {
		return ErrBrowserClosed
	}

	ctx, cancel := context.WithTimeout(browserCtx, b.opts.KeyTimeout)
	defer cancel()

	if err := b.run(ctx, chromedp.KeyEvent(key)); err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	b.logger.Debug("Key sent: %s", key)
	return nil
}

// Close cancels the browser contexts. Safe to call more than once.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *Browser) closeLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.ctx = nil
}
