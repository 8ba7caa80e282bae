package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/gherardi/geop-sync/internal/config"
	"github.com/gherardi/geop-sync/internal/model"
	"github.com/gherardi/geop-sync/internal/store"
)

// elementTimeout bounds every individual element lookup in the portal UI.
const elementTimeout = 10 * time.Second

const loginFormSelector = "#frm_login"

// Structural scrape failures. Everything else during the walk is logged and
// skipped.
var (
	ErrLogin               = errors.New("portal login failed")
	ErrCalendarUnavailable = errors.New("calendar navigation not available")
)

// Scraper drives a headless browser through the portal's week-by-week
// calendar and returns the future lectures it finds.
type Scraper struct {
	cfg       *config.Config
	snapshots store.Store
}

// New creates a Scraper. snapshots may be nil; when set, each run archives
// its raw event blocks under a batch ID for offline diagnosis.
func New(cfg *config.Config, snapshots store.Store) *Scraper {
	return &Scraper{cfg: cfg, snapshots: snapshots}
}

// rawWeek is the snapshot form of one visited week.
type rawWeek struct {
	Dates  []string   `json:"dates"`
	Blocks [][]string `json:"blocks"`
}

// ScrapeLectures logs into the portal, walks the calendar to exhaustion and
// returns all parsed lectures dated today or later. The browser session is
// torn down on every exit path.
func (s *Scraper) ScrapeLectures(ctx context.Context) ([]model.Lecture, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if s.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}
	opts = append(opts,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	page := &chromePage{ctx: chromeCtx}

	if err := s.login(page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogin, err)
	}
	log.Printf("Login credentials submitted")

	// The pagination control must exist before the walk starts; it becoming
	// unavailable mid-walk is a soft stop handled by the walker.
	if err := page.run(chromedp.WaitVisible(nextButtonSelector, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	var (
		all  []model.Lecture
		seen []rawWeek
	)
	walker := newWeekWalker(page)
	err := walker.walk(chromeCtx, func(wk week) {
		seen = append(seen, snapshotWeek(wk))
		all = append(all, parseWeek(wk)...)
	})
	if err != nil {
		return nil, err
	}

	s.archive(seen)

	today := model.Today()
	future := model.FutureOnly(all, today)
	log.Printf("Scraping completed: %d lectures total, %d future", len(all), len(future))
	return future, nil
}

func (s *Scraper) login(page *chromePage) error {
	return page.run(
		chromedp.Navigate(s.cfg.PortalURL),
		chromedp.WaitVisible(loginFormSelector, chromedp.ByQuery),
		chromedp.SendKeys(loginFormSelector+` input[name="username"]`, s.cfg.UserEmail, chromedp.ByQuery),
		chromedp.SendKeys(loginFormSelector+` input[name="password"]`, s.cfg.UserPassword, chromedp.ByQuery),
		chromedp.Submit(loginFormSelector, chromedp.ByQuery),
	)
}

// parseWeek runs every raw block of the week through the text parser,
// assigning each parsed lecture the date of its day column. Unparsable
// blocks are logged and skipped, never aborting the walk.
func parseWeek(wk week) []model.Lecture {
	var lectures []model.Lecture
	for day, dayBlocks := range wk.blocks {
		date := wk.dates[day].Format("2006-01-02")
		for _, raw := range dayBlocks {
			lecture, err := ParseBlock(raw)
			if err != nil {
				log.Printf("Skipping event on %s: %v", date, err)
				continue
			}
			lecture.Date = date
			lectures = append(lectures, lecture)
		}
	}
	return lectures
}

func snapshotWeek(wk week) rawWeek {
	snap := rawWeek{Blocks: wk.blocks}
	for _, d := range wk.dates {
		snap.Dates = append(snap.Dates, d.Format("2006-01-02"))
	}
	return snap
}

// archive stores the run's raw blocks under a batch ID. Failures only cost
// the diagnostic trail, so they are logged and ignored.
func (s *Scraper) archive(weeks []rawWeek) {
	if s.snapshots == nil || len(weeks) == 0 {
		return
	}
	batchID := time.Now().UTC().Format("20060102-150405")
	key := "scrapes/" + batchID
	if err := s.snapshots.SetJSON(key, weeks); err != nil {
		log.Printf("Could not archive raw blocks for batch %s: %v", batchID, err)
		return
	}
	log.Printf("Archived raw blocks for batch %s (%d weeks)", batchID, len(weeks))
}

// chromePage implements calendarPage against a live chromedp session. Every
// operation runs under its own element timeout.
type chromePage struct {
	ctx context.Context
}

func (p *chromePage) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(p.ctx, elementTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (p *chromePage) ViewHTML(ctx context.Context) (string, error) {
	var rendered string
	err := p.run(
		chromedp.WaitVisible(viewSelector, chromedp.ByQuery),
		chromedp.OuterHTML(viewSelector, &rendered, chromedp.ByQuery),
	)
	return rendered, err
}

func (p *chromePage) NextWeek(ctx context.Context) error {
	return p.run(chromedp.Click(nextButtonSelector, chromedp.ByQuery))
}

func (p *chromePage) PeriodTitle(ctx context.Context) (string, error) {
	var title string
	err := p.run(chromedp.Text(titleSelector, &title, chromedp.ByQuery))
	return title, err
}
