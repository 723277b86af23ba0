// Package calendar is the month grid view model: which month is shown, which days can
// be picked and which carry an entry.
package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/jinzhu/now"

	"github.com/nightstay/backend-go/internal/datekey"
)

// Weekdays are the column headers. Weeks start on Sunday.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Options configures a Grid. Every field is optional.
type Options struct {
	// Start and End bound the selectable days, inclusive. When absent the bounds run
	// from the first day two months back to the last day of the current month. Both
	// must be whole days, see datekey.NormalizeIn.
	Start *time.Time
	End   *time.Time

	// Store remembers the shown month under StoreKey when both bounds are absent.
	Store    Store
	StoreKey string

	Location *time.Location
	Now      func() time.Time

	OnSelect func(key string)
	OnDelete func(key string)

	Logger *slog.Logger
}

// Marker is the entry shown on a day
type Marker struct {
	Label string  `json:"label"`
	Color *string `json:"color"`
}

// Cell is one square of the grid. Blank cells pad the first week.
type Cell struct {
	Blank      bool    `json:"blank"`
	Key        string  `json:"date,omitempty"`
	Day        int     `json:"day,omitempty"`
	Selectable bool    `json:"selectable"`
	Selected   bool    `json:"selected"`
	Today      bool    `json:"today"`
	Marker     *Marker `json:"marker,omitempty"`
	Deletable  bool    `json:"deletable"`
}

// View is a rendered month
type View struct {
	Month    string        `json:"month"`
	Title    string        `json:"title"`
	CanPrev  bool          `json:"can_prev"`
	CanNext  bool          `json:"can_next"`
	Bounds   datekey.Range `json:"bounds"`
	Weekdays []string      `json:"weekdays"`
	Cells    []Cell        `json:"cells"`
}

// Grid pages through months inside [start, end]
type Grid struct {
	start    time.Time
	end      time.Time
	month    time.Time
	remember bool

	store    Store
	storeKey string
	loc      *time.Location
	now      func() time.Time
	onSelect func(string)
	onDelete func(string)
	logger   *slog.Logger
}

// New builds a grid and picks its initial month: the month of an explicit start, else
// the remembered month when it lies within the bounds, else today's month clamped.
func New(ctx context.Context, opts Options) *Grid {
	g := &Grid{
		store:    opts.Store,
		storeKey: opts.StoreKey,
		loc:      opts.Location,
		now:      opts.Now,
		onSelect: opts.OnSelect,
		onDelete: opts.OnDelete,
		logger:   opts.Logger,
	}
	if g.loc == nil {
		g.loc = time.Local
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}

	today := g.today()
	if opts.Start != nil {
		g.start = datekey.NormalizeIn(*opts.Start, g.loc)
	} else {
		g.start = monthStart(today).AddDate(0, -2, 0)
	}
	if opts.End != nil {
		g.end = datekey.NormalizeIn(*opts.End, g.loc)
	} else {
		g.end = monthEnd(today)
	}

	// Either explicit bound pins the view to the caller's range.
	g.remember = opts.Start == nil && opts.End == nil && g.store != nil && g.storeKey != ""

	switch {
	case opts.Start != nil:
		g.month = monthStart(g.start)
	default:
		g.month = g.clamp(monthStart(today))
		if remembered, ok := g.recall(ctx); ok {
			g.month = remembered
		}
	}

	return g
}

func (g *Grid) today() time.Time {
	t := g.now().In(g.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.loc)
}

func monthStart(t time.Time) time.Time {
	return now.With(t).BeginningOfMonth()
}

func monthEnd(t time.Time) time.Time {
	return now.With(t).BeginningOfMonth().AddDate(0, 1, -1)
}

// recall returns the remembered month when it lies within the bounds
func (g *Grid) recall(ctx context.Context) (time.Time, bool) {
	if !g.remember {
		return time.Time{}, false
	}
	value, ok, err := g.store.Get(ctx, g.storeKey)
	if err != nil {
		g.logger.Warn("⚠️ [Calendar] Failed to read remembered month", "key", g.storeKey, "error", err)
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	month, err := datekey.ParseMonth(value, g.loc)
	if err != nil {
		g.logger.Warn("⚠️ [Calendar] Ignoring malformed remembered month", "key", g.storeKey, "value", value)
		return time.Time{}, false
	}
	if month.Before(g.firstMonth()) || month.After(g.lastMonth()) {
		return time.Time{}, false
	}
	return month, true
}

func (g *Grid) firstMonth() time.Time { return monthStart(g.start) }
func (g *Grid) lastMonth() time.Time  { return monthStart(g.end) }

func (g *Grid) clamp(month time.Time) time.Time {
	if month.Before(g.firstMonth()) {
		return g.firstMonth()
	}
	if month.After(g.lastMonth()) {
		return g.lastMonth()
	}
	return month
}

// Month returns midnight on the first day of the shown month
func (g *Grid) Month() time.Time {
	return g.month
}

// Bounds returns the inclusive selectable range
func (g *Grid) Bounds() datekey.Range {
	return datekey.Range{From: datekey.Format(g.start), To: datekey.Format(g.end)}
}

// MonthRange returns the first and last day of the shown month
func (g *Grid) MonthRange() datekey.Range {
	return datekey.Range{From: datekey.Format(g.month), To: datekey.Format(monthEnd(g.month))}
}

func (g *Grid) CanPrev() bool {
	return g.month.After(g.firstMonth())
}

func (g *Grid) CanNext() bool {
	return g.month.Before(g.lastMonth())
}

// Prev shows the previous month. At the first month it does nothing.
func (g *Grid) Prev(ctx context.Context) error {
	return g.move(ctx, -1)
}

// Next shows the following month. At the last month it does nothing.
func (g *Grid) Next(ctx context.Context) error {
	return g.move(ctx, 1)
}

// Jump shows the month containing t, clamped into the bounds
func (g *Grid) Jump(ctx context.Context, t time.Time) error {
	return g.show(ctx, g.clamp(monthStart(t.In(g.loc))))
}

func (g *Grid) move(ctx context.Context, months int) error {
	return g.show(ctx, g.clamp(g.month.AddDate(0, months, 0)))
}

func (g *Grid) show(ctx context.Context, target time.Time) error {
	if target.Equal(g.month) {
		return nil
	}
	g.month = target

	if !g.remember {
		return nil
	}
	return g.store.Set(ctx, g.storeKey, datekey.MonthKey(g.month))
}

// Selectable reports whether key names a day inside the bounds
func (g *Grid) Selectable(key string) bool {
	day, err := datekey.ParseIn(key, g.loc)
	if err != nil {
		return false
	}
	return datekey.InRange(day, g.start, g.end)
}

// Select emits key through OnSelect when the day can be picked
func (g *Grid) Select(key string) bool {
	if !g.Selectable(key) {
		return false
	}
	if g.onSelect != nil {
		g.onSelect(key)
	}
	return true
}

// Delete emits key through OnDelete when the day carries an entry, is the selected day
// and lies inside the bounds. It never selects.
func (g *Grid) Delete(key, selected string, markers map[string]Marker) bool {
	if key == "" || key != selected {
		return false
	}
	if _, ok := markers[key]; !ok {
		return false
	}
	if !g.Selectable(key) {
		return false
	}
	if g.onDelete != nil {
		g.onDelete(key)
	}
	return true
}

// Render lays out the shown month. markers maps day keys to their entry.
func (g *Grid) Render(markers map[string]Marker, selected string) View {
	first := g.month
	last := monthEnd(first)
	todayKey := datekey.Format(g.today())

	view := View{
		Month:    datekey.MonthKey(first),
		Title:    first.Format("January 2006"),
		CanPrev:  g.CanPrev(),
		CanNext:  g.CanNext(),
		Bounds:   g.Bounds(),
		Weekdays: Weekdays,
	}

	offset := int(first.Weekday())
	view.Cells = make([]Cell, 0, offset+last.Day())
	for i := 0; i < offset; i++ {
		view.Cells = append(view.Cells, Cell{Blank: true})
	}

	for d := 1; d <= last.Day(); d++ {
		day := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, g.loc)
		key := datekey.Format(day)

		cell := Cell{
			Key:        key,
			Day:        d,
			Selectable: datekey.InRange(day, g.start, g.end),
			Selected:   key == selected,
			Today:      key == todayKey,
		}
		if m, ok := markers[key]; ok {
			marker := m
			cell.Marker = &marker
			cell.Deletable = cell.Selected && cell.Selectable
		}
		view.Cells = append(view.Cells, cell)
	}

	return view
}
