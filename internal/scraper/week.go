package scraper

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors for the portal's FullCalendar widget.
const (
	viewSelector       = ".fc-view"
	dayHeaderSelector  = ".fc-day-header"
	dayColumnSelector  = ".fc-event-container"
	eventSelector      = ".fc-content"
	nextButtonSelector = ".fc-next-button"
	titleSelector      = "h2"
)

// pastPeriodMarker appears in the period title once navigation has moved
// past the current month.
const pastPeriodMarker = "ago"

// calendarPage is the navigation surface the week walker drives. The live
// implementation is backed by chromedp; tests substitute a scripted fake.
type calendarPage interface {
	// ViewHTML returns the rendered HTML of the calendar view.
	ViewHTML(ctx context.Context) (string, error)
	// NextWeek advances the view one week forward.
	NextWeek(ctx context.Context) error
	// PeriodTitle returns the month/period heading above the view.
	PeriodTitle(ctx context.Context) (string, error)
}

// week is one page of the walk: the day-header dates and, aligned with them,
// the raw event text blocks of each day column.
type week struct {
	dates  []time.Time
	blocks [][]string
}

// weekWalker pages through the calendar one week at a time until it runs
// past the current month or navigation breaks.
type weekWalker struct {
	page calendarPage
	now  func() time.Time
}

func newWeekWalker(page calendarPage) *weekWalker {
	return &weekWalker{page: page, now: time.Now}
}

// walk visits consecutive weeks until a stop condition fires. Running past
// the current month is the normal stop; a navigation failure mid-walk stops
// pagination but keeps the weeks already visited. Only the view failing to
// render on the very first week is a hard error.
func (w *weekWalker) walk(ctx context.Context, visit func(week)) error {
	weekCount := 0
	for {
		weekCount++

		rendered, err := w.page.ViewHTML(ctx)
		if err != nil {
			if weekCount == 1 {
				return fmt.Errorf("calendar view never became visible: %w", err)
			}
			log.Printf("Calendar view unavailable on week %d, stopping: %v", weekCount, err)
			return nil
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
		if err != nil {
			if weekCount == 1 {
				return fmt.Errorf("parsing calendar view: %w", err)
			}
			log.Printf("Could not parse calendar view on week %d, stopping: %v", weekCount, err)
			return nil
		}

		dates := parseWeekDates(doc, w.now().Year())
		if len(dates) == 0 {
			log.Printf("No date headers found on week %d, stopping", weekCount)
			return nil
		}

		visit(week{dates: dates, blocks: extractDayBlocks(doc, len(dates))})

		if err := w.page.NextWeek(ctx); err != nil {
			log.Printf("Could not navigate past week %d, keeping partial results: %v", weekCount, err)
			return nil
		}

		title, err := w.page.PeriodTitle(ctx)
		if err != nil {
			log.Printf("Could not read period title after week %d: %v", weekCount, err)
			continue
		}
		if strings.Contains(strings.ToLower(title), pastPeriodMarker) {
			log.Printf("Reached past period %q after week %d, stopping", title, weekCount)
			return nil
		}
	}
}

// parseWeekDates extracts one date per day header. Headers end in a
// "day/month" token; the year is taken from the wall clock, so a walk
// crossing a year boundary mis-tags January dates (known limitation).
func parseWeekDates(doc *goquery.Document, year int) []time.Time {
	var dates []time.Time
	doc.Find(dayHeaderSelector).Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return
		}

		day, month, ok := splitDayMonth(fields[len(fields)-1])
		if !ok {
			log.Printf("Could not parse date from header %q, skipping", text)
			return
		}
		dates = append(dates, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	})
	return dates
}

func splitDayMonth(token string) (day, month int, ok bool) {
	parts := strings.Split(token, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, false
	}
	return day, month, true
}

// extractDayBlocks collects the raw event text of each day column, aligned
// positionally with the parsed day headers. Extra columns beyond the parsed
// dates are dropped rather than guessed at.
func extractDayBlocks(doc *goquery.Document, numDates int) [][]string {
	blocks := make([][]string, numDates)
	doc.Find(dayColumnSelector).EachWithBreak(func(day int, column *goquery.Selection) bool {
		if day >= numDates {
			log.Printf("More day columns than parsed dates (%d), dropping extras", numDates)
			return false
		}
		column.Find(eventSelector).Each(func(_ int, event *goquery.Selection) {
			blocks[day] = append(blocks[day], elementText(event))
		})
		return true
	})
	return blocks
}

// elementText renders an element's text the way a browser would expose it:
// one line per text node, empty runs dropped.
func elementText(sel *goquery.Selection) string {
	var lines []string
	for _, node := range sel.Nodes {
		collectTextLines(node, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectTextLines(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTextLines(c, lines)
	}
}
