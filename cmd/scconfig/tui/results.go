package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/output"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// filters lists the status filters cycled with "f". A nil entry shows all.
var filters = []*trace.Status{nil, statusPtr(trace.StatusActionRequired), statusPtr(trace.StatusFailed), statusPtr(trace.StatusOK), statusPtr(trace.StatusNotApplicable)}

func statusPtr(s trace.Status) *trace.Status { return &s }

// detailHeight is the number of trace lines shown for the cursor record.
const detailHeight = 6

// ResultModel browses the records of a report.
type ResultModel struct {
	report   *engine.Report
	visible  []int // indexes into report.Records after filtering
	filter   int   // index into filters
	cursor   int   // index into visible
	offset   int   // scroll offset into visible
	selected map[int]bool
	detail   viewport.Model
	width    int
	height   int
}

// NewResultModel creates a result model for report.
func NewResultModel(report *engine.Report) ResultModel {
	m := ResultModel{
		report:   report,
		selected: make(map[int]bool),
		detail:   viewport.New(76, detailHeight),
		width:    80,
		height:   24,
	}
	m.applyFilter()
	return m
}

// Init initializes the result model.
func (m ResultModel) Init() tea.Cmd {
	return nil
}

// Update handles window size changes.
func (m ResultModel) Update(msg tea.Msg) (ResultModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetDimensions(msg.Width, msg.Height)
	}
	return m, nil
}

// HandleKey handles navigation and selection keys.
func (m *ResultModel) HandleKey(key string) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.visible) - 1
	case "pgup":
		m.cursor -= m.visibleRows()
	case "pgdown":
		m.cursor += m.visibleRows()
	case " ":
		if idx, ok := m.current(); ok {
			m.Toggle(idx)
		}
	case "a":
		m.SelectPending()
	case "n":
		m.SelectNone()
	case "f":
		m.filter = (m.filter + 1) % len(filters)
		m.applyFilter()
	case "ctrl+d":
		m.detail.SetYOffset(m.detail.YOffset + detailHeight/2)
		return
	case "ctrl+u":
		m.detail.SetYOffset(m.detail.YOffset - detailHeight/2)
		return
	}
	m.clampCursor()
	m.refreshDetail()
}

// applyFilter rebuilds the visible index list for the current filter.
func (m *ResultModel) applyFilter() {
	m.visible = make([]int, 0, len(m.report.Records))
	want := filters[m.filter]
	for i, rec := range m.report.Records {
		if want == nil || rec.Status == *want {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
	m.refreshDetail()
}

func (m *ResultModel) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *ResultModel) refreshDetail() {
	idx, ok := m.current()
	if !ok {
		m.detail.SetContent("")
		return
	}
	rec := m.report.Records[idx]
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.ManifestDescription)
	if rec.RealFilePath != "" {
		fmt.Fprintf(&b, "file: %s\n", rec.RealFilePath)
	}
	if rec.NewFilePath != "" {
		fmt.Fprintf(&b, "now:  %s\n", rec.NewFilePath)
	}
	for _, line := range rec.ProcessingTrace {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	m.detail.SetContent(b.String())
	m.detail.GotoTop()
}

// current returns the record index under the cursor.
func (m ResultModel) current() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

// Selectable reports whether the record at index can be queued for apply.
func (m ResultModel) Selectable(index int) bool {
	return index >= 0 && index < len(m.report.Records) &&
		m.report.Records[index].Status == trace.StatusActionRequired
}

// Toggle toggles selection of the record at index. Only pending records
// can be selected.
func (m *ResultModel) Toggle(index int) {
	if !m.Selectable(index) {
		return
	}
	if m.selected[index] {
		delete(m.selected, index)
	} else {
		m.selected[index] = true
	}
}

// SelectPending selects every record with a pending change.
func (m *ResultModel) SelectPending() {
	for i := range m.report.Records {
		if m.Selectable(i) {
			m.selected[i] = true
		}
	}
}

// SelectNone clears the selection.
func (m *ResultModel) SelectNone() {
	m.selected = make(map[int]bool)
}

// SelectedRecords returns the selected records in report order.
func (m ResultModel) SelectedRecords() []trace.Record {
	var out []trace.Record
	for i, rec := range m.report.Records {
		if m.selected[i] {
			out = append(out, rec)
		}
	}
	return out
}

// SelectedCount returns the number of selected records.
func (m ResultModel) SelectedCount() int {
	return len(m.selected)
}

// Visible returns the record indexes shown under the current filter.
func (m ResultModel) Visible() []int {
	return m.visible
}

// Cursor returns the cursor position within the visible records.
func (m ResultModel) Cursor() int {
	return m.cursor
}

// FilterName returns the label of the current status filter.
func (m ResultModel) FilterName() string {
	if f := filters[m.filter]; f != nil {
		return f.String()
	}
	return "ALL"
}

// SetDimensions updates the width and height.
func (m *ResultModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
	m.detail.Width = max(width-8, 20)
	m.detail.Height = detailHeight
	m.clampCursor()
}

func (m ResultModel) visibleRows() int {
	// header, help, dividers, detail box and footer
	available := m.height - 10 - detailHeight
	if available < 3 {
		available = 3
	}
	return available
}

// View renders the result model.
func (m ResultModel) View() string {
	contentWidth := m.width - 4
	if contentWidth < 60 {
		contentWidth = 60
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(mutedTextStyle.Render("  No entries match the current filter."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderList(contentWidth))
		b.WriteString(detailBoxStyle.Width(contentWidth - 2).Render(m.detail.View()))
		b.WriteString("\n")
	}

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

func (m ResultModel) renderHeader() string {
	r := m.report
	return titleStyle.Render(fmt.Sprintf("  scconfig %s - %s / %s - %s",
		r.Mode, r.Role.Title(), r.Target, r.WebRoot))
}

func (m ResultModel) renderHelpBar() string {
	hints := []struct {
		key  string
		desc string
	}{
		{"Space", "Toggle"},
		{"a", "All pending"},
		{"n", "None"},
		{"f", "Filter"},
		{"Enter", "Apply"},
		{"q", "Quit"},
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}
	return "  " + strings.Join(parts, "  ")
}

func (m ResultModel) renderList(width int) string {
	var b strings.Builder
	pathWidth := width - 20

	end := min(m.offset+m.visibleRows(), len(m.visible))
	for pos := m.offset; pos < end; pos++ {
		idx := m.visible[pos]
		rec := m.report.Records[idx]

		checkbox := "   "
		if m.Selectable(idx) {
			if m.selected[idx] {
				checkbox = checkedStyle.Render("[x]")
			} else {
				checkbox = uncheckedStyle.Render("[ ]")
			}
		}

		cursor := " "
		if pos == m.cursor {
			cursor = cursorStyle.Render(">")
		}

		badge := statusStyle(rec.Status).Render(padRight(rec.Status.String(), 6))
		line := fmt.Sprintf("  %s %s %s  %s", checkbox, badge, cursor, truncatePath(output.FilePath(rec), pathWidth))

		if pos == m.cursor {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(normalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ResultModel) renderFooter() string {
	s := m.report.Summary
	return fmt.Sprintf("  Filter: %s  Selected: %d  OK %d  ACTION %d  FAIL %d  NA %d",
		m.FilterName(), m.SelectedCount(), s.OK, s.ActionRequired, s.Failed, s.NotApplicable)
}
