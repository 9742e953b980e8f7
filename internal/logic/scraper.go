package logic

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const DefaultScrapeTimeout = 30 * time.Second

// articleTextJS prefers the <article> element and falls back to the whole body
const articleTextJS = `(() => {
	const node = document.querySelector('article') || document.querySelector('main') || document.body;
	return node ? node.innerText : '';
})()`

// Scraper fetches the readable text of an article
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type ChromeScraper struct {
	chromePath string
	timeout    time.Duration
	logger     *zap.SugaredLogger
}

// NewChromeScraper drives a headless Chrome. An empty chromePath falls back
// to a detected install, then to chromedp's own lookup.
func NewChromeScraper(chromePath string, timeout time.Duration, logger *zap.Logger) *ChromeScraper {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = DefaultScrapeTimeout
	}
	return &ChromeScraper{chromePath: chromePath, timeout: timeout, logger: logger.Sugar()}
}

// Scrape returns ErrScrapeEmpty when the page could not be loaded or had no
// text, so the caller can ask for pasted text instead.
func (s *ChromeScraper) Scrape(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var text string
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(articleTextJS, &text),
	); err != nil {
		s.logger.Warnw("Scrape failed", "url", url, "error", err)
		scrapeFallbacks.Inc()
		return "", fmt.Errorf("%w: %v", ErrScrapeEmpty, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		scrapeFallbacks.Inc()
		return "", ErrScrapeEmpty
	}
	return text, nil
}

func detectChromePath() string {
	for _, p := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
