package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrStale is returned when a newer trigger of the same action started
	// before this response arrived. The page is left as the newer one wants it.
	ErrStale = errors.New("response superseded by a newer request")

	// ErrUnknownButton is returned by Dispatch for IDs with no handler.
	ErrUnknownButton = errors.New("unknown button")
)

// Alerter surfaces a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a plain function to an Alerter.
type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) { f(message) }

// Backend is the news API the handlers talk to. *Client implements it.
type Backend interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
	Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error)
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

type action int

const (
	actionScrape action = iota
	actionFetch
	actionSummarize
	numActions
)

// Dispatcher binds the scrape, fetch and summarize buttons to their backend
// calls and writes the responses into a Page.
//
// Each action carries a generation counter. A response is applied only if it
// belongs to the latest trigger of its action, so the page always reflects
// the most recent click rather than the last response to arrive.
type Dispatcher struct {
	backend Backend
	page    *Page
	alerter Alerter
	log     *zap.Logger

	mu  sync.Mutex
	gen [numActions]uint64

	basePath string
	handlers map[string]func(context.Context) error

	// afterBegin, when set, runs after a trigger is registered and before
	// its request is sent.
	afterBegin func(action)
}

type Option func(*Dispatcher)

// WithBasePath sets the path the server is mounted under, so image sources
// point at <base>/images/.
func WithBasePath(p string) Option {
	return func(d *Dispatcher) { d.basePath = strings.TrimRight(p, "/") }
}

// New binds the three buttons to backend, rendering into page. A nil alerter
// logs alerts instead.
func New(backend Backend, page *Page, alerter Alerter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		page:    page,
		alerter: alerter,
		log:     zap.L().Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.alerter == nil {
		d.alerter = AlertFunc(func(msg string) { d.log.Warn("alert", zap.String("message", msg)) })
	}
	d.handlers = map[string]func(context.Context) error{
		ScrapeButton:    d.Scrape,
		FetchButton:     d.Fetch,
		SummarizeButton: d.Summarize,
	}
	return d
}

// Page returns the page the handlers render into.
func (d *Dispatcher) Page() *Page { return d.page }

// Dispatch runs the handler bound to buttonID as an asynchronous task. The
// returned channel receives the handler's result and is then closed.
func (d *Dispatcher) Dispatch(ctx context.Context, buttonID string) <-chan error {
	done := make(chan error, 1)
	h, ok := d.handlers[buttonID]
	if !ok {
		done <- fmt.Errorf("%w: %q", ErrUnknownButton, buttonID)
		close(done)
		return done
	}
	go func() {
		defer close(done)
		done <- h(ctx)
	}()
	return done
}

// begin registers a new trigger of a and runs start in the same critical
// section, so a placeholder always belongs to the latest trigger. start may
// veto the trigger by returning false; begin then reports ok=false.
func (d *Dispatcher) begin(a action, start func(el func(string) *Element) bool) (gen uint64, ok bool) {
	d.mu.Lock()
	ok = true
	if start != nil {
		d.page.update(func(el func(string) *Element) { ok = start(el) })
	}
	if ok {
		d.gen[a]++
		gen = d.gen[a]
	}
	d.mu.Unlock()

	if ok && d.afterBegin != nil {
		d.afterBegin(a)
	}
	return gen, ok
}

// commit runs apply while holding the dispatcher lock if gen is still the
// latest generation of a.
func (d *Dispatcher) commit(a action, gen uint64, apply func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen[a] != gen {
		return ErrStale
	}
	apply()
	return nil
}

// Scrape sends the scrape-url value to /scrape and lists the scraped URLs.
// The URL is not validated.
func (d *Dispatcher) Scrape(ctx context.Context) error {
	var url string
	gen, _ := d.begin(actionScrape, func(el func(string) *Element) bool {
		url = el(ScrapeURL).Value
		el(ScrapeStatus).Text = ScrapingPlaceholder
		return true
	})

	resp, err := d.backend.Scrape(ctx, ScrapeRequest{URL: url})
	if err != nil {
		d.log.Warn("scrape failed", zap.String("url", url), zap.Error(err))
		return err
	}
	return d.commit(actionScrape, gen, func() {
		d.page.update(func(el func(string) *Element) {
			el(ScrapeStatus).Text = resp.Message
			el(ScrapedURLs).Items = append([]string(nil), resp.ScrapedURLs...)
		})
	})
}

// Fetch loads the article at fetch-url and shows it. An error in the
// response is passed to the Alerter and leaves the page unchanged. Fetch is
// the only handler that looks at the error field.
func (d *Dispatcher) Fetch(ctx context.Context) error {
	var url string
	gen, _ := d.begin(actionFetch, func(el func(string) *Element) bool {
		url = el(FetchURL).Value
		return true
	})

	resp, err := d.backend.Fetch(ctx, FetchRequest{URL: url})
	if err != nil {
		d.log.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return err
	}

	if resp.Error != "" {
		if err := d.commit(actionFetch, gen, func() {}); err != nil {
			return err
		}
		d.alerter.Alert(resp.Error)
		return nil
	}

	markup, visible, err := renderArticleText(resp.Title, resp.Date, resp.Text)
	if err != nil {
		return err
	}
	return d.commit(actionFetch, gen, func() {
		// a pending summary belongs to the previous article
		d.gen[actionSummarize]++
		d.page.update(func(el func(string) *Element) {
			el(ArticleDisplay).Hidden = false
			el(ArticleTitle).Text = resp.Title
			el(ArticleDate).Text = resp.Date
			el(ArticleText).HTML = markup
			el(ArticleText).Text = visible
			el(ArticleSummary).Value = ""
			el(ArticleImage).Src = d.imageSrc(resp.ImagePath)
		})
	})
}

// Summarize sends the displayed article text to /summarize. With nothing
// displayed it does nothing.
func (d *Dispatcher) Summarize(ctx context.Context) error {
	var text string
	gen, ok := d.begin(actionSummarize, func(el func(string) *Element) bool {
		text = el(ArticleText).Text
		if text == "" {
			return false
		}
		el(ArticleSummary).Value = SummarizingPlaceholder
		return true
	})
	if !ok {
		return nil
	}

	resp, err := d.backend.Summarize(ctx, SummarizeRequest{Text: text})
	if err != nil {
		d.log.Warn("summarize failed", zap.Error(err))
		return err
	}
	return d.commit(actionSummarize, gen, func() {
		d.page.update(func(el func(string) *Element) {
			el(ArticleSummary).Value = resp.Summary
		})
	})
}

// imageSrc maps a stored image path to the URL it is served under: the
// last path segment below <base>/images/.
func (d *Dispatcher) imageSrc(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return path.Join("/", d.basePath, "images") + "/" + imagePath[strings.LastIndex(imagePath, "/")+1:]
}
