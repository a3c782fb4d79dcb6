// Package pdf prints frontend print views to PDF with a headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/edoomio/studio/internal/logger"
)

// ErrBrowserLaunch means Chrome could not be started or connected to.
var ErrBrowserLaunch = errors.New("failed to launch headless browser")

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// Renderer turns a URL into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// Options configures the Chrome renderer.
type Options struct {
	ChromePath    string
	Production    bool
	RenderTimeout time.Duration
	SettleDelay   time.Duration
}

// ChromeRenderer keeps one browser process and opens a fresh page per render.
type ChromeRenderer struct {
	opts Options
	log  *logger.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewChromeRenderer(opts Options, log *logger.Logger) *ChromeRenderer {
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 60 * time.Second
	}
	return &ChromeRenderer{opts: opts, log: log.With("component", "pdf_renderer")}
}

func (r *ChromeRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	bin, err := ResolveExecutable(r.opts, runtimeGOOS, downloadBrowser)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	l := newLauncher(bin)
	controlURL, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("%w: connect: %v", ErrBrowserLaunch, err)
	}

	r.log.Info("Headless browser started", "bin", bin)
	r.launcher = l
	r.browser = browser
	return browser, nil
}

func newLauncher(bin string) *launcher.Launcher {
	l := launcher.New().Bin(bin).Headless(true).NoSandbox(true)
	for _, f := range launchFlags {
		name, value := f[0], f[1]
		if value == "" {
			l = l.Set(flagName(name))
		} else {
			l = l.Set(flagName(name), value)
		}
	}
	return l
}

// Render navigates to url, waits for the page and its fonts to settle and prints it.
func (r *ChromeRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.RenderTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		r.reset()
		return nil, fmt.Errorf("%w: open page: %v", ErrBrowserLaunch, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	waitIdle := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed waiting for page load: %w", err)
	}
	waitIdle()

	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return nil, fmt.Errorf("failed waiting for fonts: %w", err)
	}
	if r.opts.SettleDelay > 0 {
		select {
		case <-time.After(r.opts.SettleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      num(a4Width),
		PaperHeight:     num(a4Height),
		MarginTop:       num(0),
		MarginBottom:    num(0),
		MarginLeft:      num(0),
		MarginRight:     num(0),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print PDF: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF stream: %w", err)
	}
	r.log.Debug("Rendered PDF", "url", url, "bytes", len(data))
	return data, nil
}

// reset drops a browser that stopped answering so the next render relaunches it.
func (r *ChromeRenderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// Close shuts down the browser process.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *ChromeRenderer) closeLocked() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

func num(v float64) *float64 { return &v }

var _ Renderer = (*ChromeRenderer)(nil)
