package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type fixtureEvent struct {
	time  string
	title string
}

// weekFixture renders a minimal FullCalendar week view: one header per day
// and, aligned with them, one event container per day column.
func weekFixture(headers []string, days [][]fixtureEvent) string {
	var b strings.Builder
	b.WriteString(`<div class="fc-view"><table><thead><tr>`)
	for _, h := range headers {
		fmt.Fprintf(&b, `<th class="fc-day-header">%s</th>`, h)
	}
	b.WriteString(`</tr></thead><tbody><tr>`)
	for _, events := range days {
		b.WriteString(`<td><div class="fc-event-container">`)
		for _, ev := range events {
			fmt.Fprintf(&b,
				`<a class="fc-event"><div class="fc-content"><div class="fc-time">%s</div><div class="fc-title">%s</div></div></a>`,
				ev.time, ev.title)
		}
		b.WriteString(`</div></td>`)
	}
	b.WriteString(`</tr></tbody></table></div>`)
	return b.String()
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

// fakeWeek scripts one iteration of the walk. title is what the period
// heading shows after navigating away from this week.
type fakeWeek struct {
	html    string
	viewErr error
	navErr  error
	title   string
}

type fakePage struct {
	weeks []fakeWeek
	pos   int
	title string
}

func (p *fakePage) ViewHTML(ctx context.Context) (string, error) {
	if p.pos >= len(p.weeks) {
		return "", errors.New("no more weeks scripted")
	}
	wk := p.weeks[p.pos]
	if wk.viewErr != nil {
		return "", wk.viewErr
	}
	return wk.html, nil
}

func (p *fakePage) NextWeek(ctx context.Context) error {
	wk := p.weeks[p.pos]
	if wk.navErr != nil {
		return wk.navErr
	}
	p.title = wk.title
	p.pos++
	return nil
}

func (p *fakePage) PeriodTitle(ctx context.Context) (string, error) {
	return p.title, nil
}

func testWalker(page calendarPage) *weekWalker {
	w := newWeekWalker(page)
	w.now = func() time.Time {
		return time.Date(2025, time.September, 22, 12, 0, 0, 0, time.UTC)
	}
	return w
}

func simpleWeek(title string) fakeWeek {
	return fakeWeek{
		html: weekFixture(
			[]string{"Lun 22/09"},
			[][]fixtureEvent{{{time: "09:00 - 10:30", title: "Algorithms - Dr. Rossi - Aula: A1"}}},
		),
		title: title,
	}
}

func TestWalkStopsPastCurrentMonth(t *testing.T) {
	page := &fakePage{weeks: []fakeWeek{
		simpleWeek("settembre 2025"),
		simpleWeek("settembre 2025"),
		simpleWeek("settembre 2025"),
		simpleWeek("settembre 2025"),
		simpleWeek("25 ago – 31 ago 2025"),
		simpleWeek("settembre 2025"),
	}}

	visited := 0
	if err := testWalker(page).walk(context.Background(), func(week) { visited++ }); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if visited != 5 {
		t.Errorf("visited %d weeks, want 5", visited)
	}
}

func TestWalkKeepsPartialResultsOnNavigationFailure(t *testing.T) {
	weeks := []fakeWeek{
		simpleWeek("settembre 2025"),
		simpleWeek("settembre 2025"),
		simpleWeek("settembre 2025"),
	}
	weeks[2].navErr = errors.New("button gone")
	page := &fakePage{weeks: weeks}

	visited := 0
	if err := testWalker(page).walk(context.Background(), func(week) { visited++ }); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if visited != 3 {
		t.Errorf("visited %d weeks, want 3", visited)
	}
}

func TestWalkFailsWhenViewNeverVisible(t *testing.T) {
	page := &fakePage{weeks: []fakeWeek{{viewErr: errors.New("timeout")}}}

	err := testWalker(page).walk(context.Background(), func(week) {
		t.Error("visit called despite missing view")
	})
	if err == nil {
		t.Fatal("walk should fail when the view never renders")
	}
}

func TestWalkStopsWhenViewLostMidWalk(t *testing.T) {
	weeks := []fakeWeek{
		simpleWeek("settembre 2025"),
		{viewErr: errors.New("timeout")},
	}
	page := &fakePage{weeks: weeks}

	visited := 0
	if err := testWalker(page).walk(context.Background(), func(week) { visited++ }); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if visited != 1 {
		t.Errorf("visited %d weeks, want 1", visited)
	}
}

func TestWalkStopsOnEmptyHeaders(t *testing.T) {
	page := &fakePage{weeks: []fakeWeek{
		simpleWeek("settembre 2025"),
		{html: `<div class="fc-view"></div>`},
	}}

	visited := 0
	if err := testWalker(page).walk(context.Background(), func(week) { visited++ }); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if visited != 1 {
		t.Errorf("visited %d weeks, want 1", visited)
	}
}

func TestWalkAssignsHeaderDates(t *testing.T) {
	page := &fakePage{weeks: []fakeWeek{{
		html: weekFixture(
			[]string{"Lun 22/09", "Mar 23/09"},
			[][]fixtureEvent{
				{{time: "09:00 - 10:30", title: "Algorithms - Dr. Rossi - Aula: A1"}},
				{{time: "11:00 - 13:00", title: "Analysis - Dr. Bianchi - Aula: B2"}},
			},
		),
		navErr: errors.New("stop here"),
	}}}

	var got week
	if err := testWalker(page).walk(context.Background(), func(wk week) { got = wk }); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	wantDates := []string{"2025-09-22", "2025-09-23"}
	if len(got.dates) != len(wantDates) {
		t.Fatalf("got %d dates, want %d", len(got.dates), len(wantDates))
	}
	for i, want := range wantDates {
		if d := got.dates[i].Format("2006-01-02"); d != want {
			t.Errorf("dates[%d] = %s, want %s", i, d, want)
		}
	}

	lectures := parseWeek(got)
	if len(lectures) != 2 {
		t.Fatalf("parsed %d lectures, want 2", len(lectures))
	}
	if lectures[0].Date != "2025-09-22" || lectures[1].Date != "2025-09-23" {
		t.Errorf("lecture dates = %s, %s; want 2025-09-22, 2025-09-23", lectures[0].Date, lectures[1].Date)
	}
	if lectures[1].Subject != "Analysis" {
		t.Errorf("lectures[1].Subject = %q, want Analysis", lectures[1].Subject)
	}
}

func TestParseWeekDatesSkipsBadHeaders(t *testing.T) {
	doc := mustDoc(t, weekFixture(
		[]string{"Lun 22/09", "giorno senza data", "Mer 24/09"},
		nil,
	))

	dates := parseWeekDates(doc, 2025)
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2", len(dates))
	}
	if d := dates[1].Format("2006-01-02"); d != "2025-09-24" {
		t.Errorf("dates[1] = %s, want 2025-09-24", d)
	}
}

func TestExtractDayBlocksDropsExtraColumns(t *testing.T) {
	doc := mustDoc(t, weekFixture(
		[]string{"Lun 22/09", "Mar 23/09"},
		[][]fixtureEvent{
			{{time: "09:00 - 10:30", title: "Algorithms - Dr. Rossi - Aula: A1"}},
			{{time: "11:00 - 13:00", title: "Analysis - Dr. Bianchi - Aula: B2"}},
			{{time: "15:00 - 17:00", title: "Orphan - Dr. Verdi - Aula: C3"}},
		},
	))

	// Only two headers parsed; the third column has no date to align with.
	blocks := extractDayBlocks(doc, 2)
	if len(blocks) != 2 {
		t.Fatalf("got %d day columns, want 2", len(blocks))
	}
	if len(blocks[0]) != 1 || len(blocks[1]) != 1 {
		t.Fatalf("unexpected block counts: %d, %d", len(blocks[0]), len(blocks[1]))
	}

	want := "09:00 - 10:30\nAlgorithms - Dr. Rossi - Aula: A1"
	if blocks[0][0] != want {
		t.Errorf("blocks[0][0] = %q, want %q", blocks[0][0], want)
	}
}

func TestParseWeekSkipsUnparsableBlocks(t *testing.T) {
	wk := week{
		dates: []time.Time{time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC)},
		blocks: [][]string{{
			"09:00 - 10:30\nAlgorithms - Dr. Rossi - Aula: A1",
			"garbage",
			"11:00 - 13:00\nAnalysis - Dr. Bianchi - Aula: B2",
		}},
	}

	lectures := parseWeek(wk)
	if len(lectures) != 2 {
		t.Fatalf("parsed %d lectures, want 2", len(lectures))
	}
	for _, l := range lectures {
		if l.Date != "2025-09-22" {
			t.Errorf("lecture date = %s, want 2025-09-22", l.Date)
		}
	}
}
