package ui

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"factionwatch/aggregate"
	"factionwatch/config"
)

const (
	pageMain   = "dashboard"
	pageDetail = "detail"
)

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorTeal
)

// Provider is the aggregation surface the dashboard renders from. A reload
// swaps the whole provider; nothing is mutated in place.
type Provider interface {
	Summarize(days int) map[string]aggregate.Entry
	Overview(summary map[string]aggregate.Entry) aggregate.Stats
	MemberWindow(id string, days int) []aggregate.Observation
}

// Dashboard is the interactive tview adapter: stat cards, a filterable
// member table, and a per-member timeline overlay.
type Dashboard struct {
	app       *tview.Application
	pages     *tview.Pages
	header    *tview.TextView
	statViews [4]*tview.TextView
	table     *tview.Table
	search    *tview.InputField
	windowSel *tview.DropDown
	detail    *tview.TextView
	status    *tview.TextView
	filter    *SearchFilter

	provider Provider
	reload   func() (Provider, error)
	loadErr  error

	view        View
	rowIDs      []string
	days        int
	options     []int
	detailShown bool
	reloading   bool
}

// NewDashboard builds the interactive adapter. A non-nil loadErr renders
// the load-error state instead of the table until a reload succeeds.
func NewDashboard(cfg *config.Config, provider Provider, loadErr error, reload func() (Provider, error)) *Dashboard {
	d := &Dashboard{
		app:      tview.NewApplication().EnableMouse(cfg.UI.EnableMouse),
		pages:    tview.NewPages(),
		provider: provider,
		reload:   reload,
		loadErr:  loadErr,
		days:     cfg.Window.DefaultDays,
		options:  cfg.WindowOptions(),
	}
	d.filter = NewSearchFilter(func() {
		d.app.QueueUpdateDraw(d.applyFilter)
	})

	d.header = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	for i := range d.statViews {
		d.statViews[i] = newBoxedTextView("")
	}
	d.table = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	d.table.SetBorder(true)
	d.table.SetBorderColor(uiBorderColor)
	d.table.SetTitle("Members").SetTitleAlign(tview.AlignLeft)
	d.table.SetTitleColor(uiTitleColor)
	d.table.SetSelectedFunc(func(row, col int) {
		idx := row - 1
		if idx >= 0 && idx < len(d.rowIDs) {
			d.openDetail(d.rowIDs[idx])
		}
	})

	d.search = tview.NewInputField().SetLabel("Search: ").SetFieldWidth(24)
	d.search.SetChangedFunc(func(text string) {
		d.filter.SetQuery(text)
	})
	d.search.SetDoneFunc(func(key tcell.Key) {
		d.app.SetFocus(d.table)
	})

	d.windowSel = tview.NewDropDown().SetLabel("Window: ")
	labels := make([]string, len(d.options))
	current := 0
	for i, days := range d.options {
		labels[i] = windowLabel(days)
		if days == d.days {
			current = i
		}
	}
	d.windowSel.SetOptions(labels, func(text string, index int) {
		if index < 0 || index >= len(d.options) {
			return
		}
		if d.options[index] == d.days {
			return
		}
		d.days = d.options[index]
		d.refresh()
	})
	d.windowSel.SetCurrentOption(current)

	d.detail = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.detail.SetScrollable(true)
	d.detail.SetBorder(true)
	d.detail.SetBorderColor(uiBorderColor)
	d.detail.SetTitleColor(uiTitleColor)
	d.status = tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	statsRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	for i := range d.statViews {
		statsRow.AddItem(d.statViews[i], 0, 1, false)
	}
	controls := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(d.search, 0, 2, false).
		AddItem(d.windowSel, 0, 1, false)
	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 1, 0, false).
		AddItem(statsRow, 3, 0, false).
		AddItem(controls, 1, 0, false).
		AddItem(d.table, 0, 1, true).
		AddItem(d.status, 1, 0, false).
		AddItem(buildFooter(), 1, 0, false)

	d.pages.AddPage(pageMain, main, true, true)
	d.pages.AddPage(pageDetail, centerOverlay(d.detail), true, false)
	d.app.SetRoot(d.pages, true)
	d.app.SetFocus(d.table)
	d.installKeybindings()
	d.refresh()
	return d
}

// Run blocks on the tview event loop until the user quits.
func (d *Dashboard) Run() error {
	return d.app.Run()
}

func (d *Dashboard) Stop() {
	if d == nil {
		return
	}
	d.filter.Stop()
	d.app.Stop()
}

func (d *Dashboard) installKeybindings() {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Escape closes the member detail regardless of focus.
		if event.Key() == tcell.KeyEsc && d.detailShown {
			d.closeDetail()
			return nil
		}
		if event.Key() == tcell.KeyCtrlC {
			d.Stop()
			return nil
		}
		if d.app.GetFocus() == d.search {
			return event
		}
		switch event.Rune() {
		case 'q', 'Q':
			d.Stop()
			return nil
		case '/':
			d.app.SetFocus(d.search)
			return nil
		case 'r', 'R':
			d.triggerReload()
			return nil
		}
		return event
	})
}

// refresh re-runs the loader-independent pipeline: aggregate from the
// already-loaded bundle and replace the rendered output wholesale.
func (d *Dashboard) refresh() {
	if d.loadErr != nil {
		d.view = ErrorView(d.days)
	} else {
		summary := d.provider.Summarize(d.days)
		stats := d.provider.Overview(summary)
		d.view = BuildView(summary, stats, d.filter.ActiveQuery(), d.days, time.Now())
	}
	d.renderHeader()
	d.renderStats()
	d.renderTable()
}

// applyFilter re-applies the search query to the already-built view
// without re-aggregating.
func (d *Dashboard) applyFilter() {
	d.view = d.view.Filter(d.filter.ActiveQuery())
	d.renderTable()
}

func (d *Dashboard) renderHeader() {
	updated := d.view.Updated
	if updated == "" {
		updated = "-"
	}
	d.header.SetText(fmt.Sprintf("[::b]Faction Activity[-:-:-]  %s  (last %s)", updated, windowLabel(d.days)))
}

func (d *Dashboard) renderStats() {
	for i, stat := range d.view.Stats {
		if i >= len(d.statViews) {
			break
		}
		d.statViews[i].SetTitle(accentText(stat.Title)).SetTitleAlign(tview.AlignLeft)
		d.statViews[i].SetText(stat.Value)
	}
}

func (d *Dashboard) renderTable() {
	d.table.Clear()
	headers := []string{"Name", "Lvl", "Days In", "Last Seen", "Seen", "Active", "Polls", "Presence"}
	for col, h := range headers {
		d.table.SetCell(0, col, tview.NewTableCell("[::b]"+h).
			SetTextColor(uiTitleColor).
			SetSelectable(false))
	}
	d.rowIDs = d.rowIDs[:0]
	r := 1
	for _, row := range d.view.Rows {
		if !row.Visible {
			continue
		}
		d.table.SetCell(r, 0, tview.NewTableCell(row.Name).SetExpansion(1))
		d.table.SetCell(r, 1, tview.NewTableCell(strconv.Itoa(row.Level)).SetAlign(tview.AlignRight))
		d.table.SetCell(r, 2, tview.NewTableCell(strconv.Itoa(row.DaysInFaction)).SetAlign(tview.AlignRight))
		d.table.SetCell(r, 3, tview.NewTableCell(row.LastSeen))
		d.table.SetCell(r, 4, tview.NewTableCell(row.LastSeenAgo))
		d.table.SetCell(r, 5, tview.NewTableCell(strconv.Itoa(row.DaysActive)).SetAlign(tview.AlignRight))
		d.table.SetCell(r, 6, tview.NewTableCell(strconv.Itoa(row.TotalPolls)).SetAlign(tview.AlignRight))
		d.table.SetCell(r, 7, tview.NewTableCell(row.Presence.String()).
			SetTextColor(presenceColor(row.Presence)))
		d.rowIDs = append(d.rowIDs, row.ID)
		r++
	}
	if r == 1 && d.view.Placeholder != "" {
		d.table.SetCell(1, 0, tview.NewTableCell(d.view.Placeholder).SetSelectable(false))
	}
	d.table.ScrollToBeginning()
}

func (d *Dashboard) openDetail(id string) {
	name := ""
	for _, row := range d.view.Rows {
		if row.ID == id {
			name = row.Name
			break
		}
	}
	window := d.provider.MemberWindow(id, d.days)
	tl := BuildTimeline(name, window, time.Now())
	d.detail.SetTitle(accentText(tl.Title))
	d.detail.SetText(timelineText(tl))
	d.detail.ScrollToBeginning()
	d.pages.ShowPage(pageDetail)
	d.app.SetFocus(d.detail)
	d.detailShown = true
}

func (d *Dashboard) closeDetail() {
	d.pages.HidePage(pageDetail)
	d.app.SetFocus(d.table)
	d.detailShown = false
}

func (d *Dashboard) triggerReload() {
	if d.reload == nil || d.reloading {
		return
	}
	d.reloading = true
	d.setStatus("Reloading data...")
	go func() {
		provider, err := d.reload()
		d.app.QueueUpdateDraw(func() {
			d.reloading = false
			if err != nil {
				d.loadErr = err
				d.setStatus("Load failed: " + err.Error())
			} else {
				d.provider = provider
				d.loadErr = nil
				d.setStatus("Data reloaded")
			}
			d.refresh()
		})
	}()
}

// setStatus must run on the event loop.
func (d *Dashboard) setStatus(line string) {
	d.status.SetText(line)
}

// SystemWriter routes log output into the status line so warnings stay
// visible while the full-screen UI owns the terminal.
func (d *Dashboard) SystemWriter() *statusWriter {
	if d == nil {
		return nil
	}
	return &statusWriter{dash: d}
}

type statusWriter struct {
	dash *Dashboard
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w == nil || w.dash == nil {
		return len(p), nil
	}
	line := string(bytes.TrimRight(p, "\r\n"))
	if line == "" {
		return len(p), nil
	}
	w.dash.app.QueueUpdateDraw(func() {
		w.dash.setStatus(line)
	})
	return len(p), nil
}

func presenceColor(p aggregate.Presence) tcell.Color {
	switch p {
	case aggregate.Online:
		return tcell.ColorGreen
	case aggregate.Today:
		return tcell.ColorYellow
	default:
		return tcell.ColorGray
	}
}

func windowLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func timelineText(tl Timeline) string {
	if tl.Placeholder != "" {
		return tl.Placeholder
	}
	var buf bytes.Buffer
	for _, entry := range tl.Entries {
		fmt.Fprintf(&buf, "%s  %s  %s\n", entry.When, entry.Relative, entry.Status)
	}
	return buf.String()
}

const (
	accentTag   = "[#00afaf]"
	accentReset = "[-]"
)

func accentText(s string) string {
	return accentTag + s + accentReset
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

func centerOverlay(content tview.Primitive) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(content, 0, 4, true).
			AddItem(nil, 0, 1, false),
			0, 3, true).
		AddItem(nil, 0, 1, false)
}

func buildFooter() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetText(
		accentText("Enter") + " View  " + accentText("/") + " Search  " + accentText("Esc") + " Close  " + accentText("R") + " Reload  " + accentText("Q") + " Quit",
	)
}
