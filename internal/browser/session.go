package browser

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/monitor"
	"outlook-email-extractor/internal/view"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const tempDirPattern = "rod-outlook-*"

var activeRodSessions atomic.Int32

var (
	_ view.Source      = (*Session)(nil)
	_ monitor.Notifier = (*Session)(nil)
)

// Session is a Chromium page driven by Rod, showing the webmail the user works in
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	tmpDir  string
}

// Open launches a browser and navigates to the webmail. Without a configured user data dir a
// throwaway profile is created, which means logging in again on every start.
func Open(cfg models.BrowserConfig) (*Session, error) {
	s := &Session{}

	userDataDir := cfg.UserDataDir
	if userDataDir == "" {
		tmpDir, err := os.MkdirTemp("", tempDirPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to create temp user data dir: %w", err)
		}
		s.tmpDir = tmpDir
		userDataDir = tmpDir
	}

	u, err := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		UserDataDir(userDataDir).
		Launch()
	if err != nil {
		s.removeTempDir()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.removeTempDir()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	activeRodSessions.Add(1)

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: cfg.URL})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.URL, err)
	}
	s.page = page

	if err := page.Timeout(cfg.LoadTimeout).WaitLoad(); err != nil {
		logging.Log.WithError(err).Warn("Page did not finish loading, continuing")
	}

	logging.Log.WithField("url", cfg.URL).Info("Browser session opened")
	return s, nil
}

// Snapshot implements view.Source with the current page HTML and URL
func (s *Session) Snapshot(ctx context.Context) (*view.Snapshot, error) {
	page := s.page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("page html: %w", err)
	}

	return view.ParseString(html, info.URL)
}

// Close shuts the browser down and removes the throwaway profile
func (s *Session) Close() error {
	defer s.removeTempDir()

	if s.browser == nil {
		return nil
	}
	activeRodSessions.Add(-1)
	return s.browser.Close()
}

func (s *Session) removeTempDir() {
	if s.tmpDir == "" {
		return
	}
	if err := os.RemoveAll(s.tmpDir); err != nil {
		logging.Log.WithError(err).Warn("failed to remove temp user data dir")
	}
	s.tmpDir = ""
}
