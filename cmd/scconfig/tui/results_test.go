package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func sampleReport() *engine.Report {
	records := []trace.Record{
		{ManifestDescription: "A", RealFilePath: "/site/A.config", Status: trace.StatusOK, ProcessingTrace: []string{"a ok"}},
		{ManifestDescription: "B", RealFilePath: "/site/B.config", Status: trace.StatusActionRequired, ProcessingTrace: []string{"b needs disable"}},
		{ManifestDescription: "C", ManifestRelativePath: "C.config", Status: trace.StatusFailed, ProcessingTrace: []string{"error: not found"}},
		{ManifestDescription: "D", RealFilePath: "/site/D.config.disabled", Status: trace.StatusActionRequired},
		{ManifestDescription: "E", RealFilePath: "/site/E.config", Status: trace.StatusNotApplicable},
	}
	return &engine.Report{
		Records: records,
		Summary: engine.Summarize(records),
		Mode:    types.ModeVerify,
		Target:  types.ProviderSolr,
		Role:    types.RoleContentDelivery,
		WebRoot: "/site",
	}
}

func TestNewResultModel(t *testing.T) {
	m := NewResultModel(sampleReport())

	if got := len(m.Visible()); got != 5 {
		t.Errorf("visible = %d, want 5", got)
	}
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor())
	}
	if m.SelectedCount() != 0 {
		t.Error("expected no selection initially")
	}
	if m.FilterName() != "ALL" {
		t.Errorf("FilterName() = %q, want ALL", m.FilterName())
	}
}

func TestResultModelToggleOnlyPending(t *testing.T) {
	m := NewResultModel(sampleReport())

	m.Toggle(0) // OK record
	if m.SelectedCount() != 0 {
		t.Error("OK record should not be selectable")
	}

	m.Toggle(1)
	if m.SelectedCount() != 1 {
		t.Errorf("SelectedCount() = %d, want 1", m.SelectedCount())
	}
	m.Toggle(1)
	if m.SelectedCount() != 0 {
		t.Errorf("SelectedCount() after second toggle = %d, want 0", m.SelectedCount())
	}

	m.Toggle(99)
	if m.SelectedCount() != 0 {
		t.Error("out-of-range toggle should be ignored")
	}
}

func TestResultModelSelectPending(t *testing.T) {
	m := NewResultModel(sampleReport())
	m.SelectPending()

	got := m.SelectedRecords()
	if len(got) != 2 || got[0].ManifestDescription != "B" || got[1].ManifestDescription != "D" {
		t.Errorf("SelectedRecords() = %+v, want B and D", got)
	}

	m.SelectNone()
	if m.SelectedCount() != 0 {
		t.Errorf("SelectedCount() after SelectNone = %d", m.SelectedCount())
	}
}

func TestResultModelNavigation(t *testing.T) {
	m := NewResultModel(sampleReport())

	m.HandleKey("up")
	if m.Cursor() != 0 {
		t.Errorf("cursor after up at top = %d, want 0", m.Cursor())
	}

	m.HandleKey("down")
	m.HandleKey("j")
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor())
	}

	m.HandleKey("G")
	if m.Cursor() != 4 {
		t.Errorf("cursor after G = %d, want 4", m.Cursor())
	}
	m.HandleKey("down")
	if m.Cursor() != 4 {
		t.Errorf("cursor past end = %d, want 4", m.Cursor())
	}

	m.HandleKey("g")
	m.HandleKey("down")
	m.HandleKey(" ")
	if m.SelectedCount() != 1 {
		t.Errorf("space on pending record: SelectedCount() = %d, want 1", m.SelectedCount())
	}
}

func TestResultModelFilter(t *testing.T) {
	m := NewResultModel(sampleReport())

	m.HandleKey("f")
	if m.FilterName() != "ACTION" {
		t.Fatalf("FilterName() = %q, want ACTION", m.FilterName())
	}
	if got := m.Visible(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Visible() = %v, want [1 3]", got)
	}

	m.HandleKey("f")
	if m.FilterName() != "FAIL" || len(m.Visible()) != 1 {
		t.Errorf("FAIL filter: %q %v", m.FilterName(), m.Visible())
	}

	for i := 0; i < 3; i++ {
		m.HandleKey("f")
	}
	if m.FilterName() != "ALL" || len(m.Visible()) != 5 {
		t.Errorf("filter did not cycle back: %q %v", m.FilterName(), m.Visible())
	}
}

func TestResultModelView(t *testing.T) {
	m := NewResultModel(sampleReport())
	m.SetDimensions(120, 40)
	m.HandleKey("down")

	view := m.View()
	for _, want := range []string{"verify", "Content Delivery", "/site/B.config", "b needs disable", "ACTION 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestResultModelDetailFollowsCursor(t *testing.T) {
	m := NewResultModel(sampleReport())
	m.SetDimensions(120, 40)

	if !strings.Contains(m.View(), "a ok") {
		t.Error("detail should show the first record's trace")
	}

	m.HandleKey("down")
	m.HandleKey("down")
	view := m.View()
	if !strings.Contains(view, "error: not found") {
		t.Error("detail should show the third record's trace")
	}
	if strings.Contains(view, "a ok") {
		t.Error("detail still shows the first record")
	}

	m.HandleKey("f")
	if !strings.Contains(m.View(), "b needs disable") {
		t.Error("detail should follow the cursor into the filtered list")
	}
}

func TestResultModelViewEmptyFilter(t *testing.T) {
	r := sampleReport()
	r.Records = r.Records[:1]
	m := NewResultModel(r)
	m.HandleKey("f")

	if !strings.Contains(m.View(), "No entries match") {
		t.Error("expected empty-filter message")
	}
}

func TestModelApplyFlow(t *testing.T) {
	m := NewModel(Options{Report: sampleReport(), AllowApply: true})

	press := func(model tea.Model, key string) tea.Model {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		next, _ := model.Update(msg)
		return next
	}

	var model tea.Model = m
	model = press(model, "enter")
	if model.(Model).State() != StateBrowse {
		t.Fatal("enter with no selection should stay in browse")
	}

	model = press(model, "a")
	model = press(model, "enter")
	if model.(Model).State() != StateConfirm {
		t.Fatalf("state = %v, want StateConfirm", model.(Model).State())
	}

	model = press(model, "n")
	if model.(Model).State() != StateBrowse {
		t.Fatal("n should cancel the dialog")
	}

	model = press(model, "enter")
	model = press(model, "y")
	final := model.(Model)
	if final.State() != StateDone {
		t.Fatalf("state = %v, want StateDone", final.State())
	}
	res := final.Result()
	if !res.Apply || len(res.Selected) != 2 {
		t.Errorf("Result() = %+v, want apply of 2 records", res)
	}
}

func TestModelQuitWithoutApply(t *testing.T) {
	m := NewModel(Options{Report: sampleReport(), AllowApply: false})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(Model).State() != StateBrowse {
		t.Fatal("enter must not open the dialog when apply is not allowed")
	}

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
	if res := next.(Model).Result(); res.Apply || res.Selected != nil {
		t.Errorf("Result() = %+v, want no apply", res)
	}
}
