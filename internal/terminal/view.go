// Package terminal renders the picker workflow on a text terminal and turns
// typed commands into controller calls.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"ytpicker/internal/workflow"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var iconGlyphs = map[string]string{
	"info-circle":          "i",
	"check-circle":         "✓",
	"exclamation-circle":   "!",
	"exclamation-triangle": "✗",
}

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	panel    lipgloss.Style
	rule     lipgloss.Style
	alerts   map[workflow.Severity]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("245")),
		selected: r.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true),
		panel:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		rule:     r.NewStyle().Foreground(lipgloss.Color("62")),
		alerts: map[workflow.Severity]lipgloss.Style{
			workflow.SeverityInfo:    r.NewStyle().Foreground(lipgloss.Color("39")),
			workflow.SeveritySuccess: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			workflow.SeverityWarning: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			workflow.SeverityDanger:  r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		},
	}
}

// View implements workflow.View by printing to a writer. Like every View it
// must only be used from the event loop goroutine.
type View struct {
	out   io.Writer
	st    styles
	alert uint64

	labels   []string
	selected int
	itag     string
}

// NewView creates a view writing to out.
func NewView(out io.Writer) *View {
	return &View{
		out: out,
		st:  newStyles(lipgloss.NewRenderer(out)),
	}
}

func (v *View) println(s string) {
	fmt.Fprintln(v.out, s)
}

// ShowAlert prints the alert with its severity glyph.
func (v *View) ShowAlert(a workflow.Alert) {
	v.alert = a.ID
	style, ok := v.st.alerts[a.Severity]
	if !ok {
		style = v.st.alerts[workflow.SeverityInfo]
	}
	glyph := iconGlyphs[a.Icon]
	if glyph == "" {
		glyph = iconGlyphs["info-circle"]
	}
	v.println(style.Render(fmt.Sprintf("[%s] %s", glyph, a.Message)))
}

// RemoveAlert forgets the alert; printed lines cannot be taken back.
func (v *View) RemoveAlert(id uint64) {
	if v.alert == id {
		v.alert = 0
	}
}

// AlertID returns the id of the alert on screen, 0 when there is none.
func (v *View) AlertID() uint64 {
	return v.alert
}

func (v *View) SetLoading(loading bool) {
	if loading {
		v.println(v.st.muted.Render("Fetching video information..."))
	}
}

func (v *View) ShowVideoInfo(info workflow.InfoPanel) {
	lines := []string{
		v.st.title.Render(info.Title),
		info.Author,
		fmt.Sprintf("%s views · %s", info.Views, info.Duration),
	}
	if info.ThumbnailURL != "" {
		lines = append(lines, v.st.muted.Render(info.ThumbnailURL))
	}
	v.println(v.st.panel.Render(strings.Join(lines, "\n")))
}

func (v *View) HideVideoInfo() {}

func (v *View) SetQualityOptions(labels []string, selected int) {
	v.labels = append(v.labels[:0], labels...)
	v.selected = selected
}

func (v *View) SetHiddenFields(itag, url string) {
	v.itag = itag
}

// SetFormVisible prints the option list when the form appears.
func (v *View) SetFormVisible(visible bool) {
	if !visible {
		return
	}
	for i, label := range v.labels {
		line := fmt.Sprintf("%2d) %s", i, label)
		if i == v.selected {
			line = v.st.selected.Render(line)
		}
		v.println(line)
	}
	v.println(v.st.muted.Render("Pick a number, then: download [mp4|mp3|both]"))
}

// ScrollToForm separates the form from earlier output.
func (v *View) ScrollToForm() {
	v.println(v.st.rule.Render(strings.Repeat("─", 40)))
}

func (v *View) SetProgressVisible(visible bool) {
	if visible {
		v.println(v.st.muted.Render("Preparing your download..."))
	}
}

// ShowSelection prints the option the user picked.
func (v *View) ShowSelection(index int) {
	v.selected = index
	if index <= 0 || index >= len(v.labels) {
		v.println(v.st.muted.Render("No quality selected"))
		return
	}
	v.println(fmt.Sprintf("Selected %s (itag %s)", v.st.selected.Render(v.labels[index]), v.itag))
}

// ShowProgress prints transfer progress; total is -1 when unknown.
func (v *View) ShowProgress(written, total int64) {
	msg := "Downloaded " + humanize.Bytes(uint64(written))
	if total > 0 {
		msg += " of " + humanize.Bytes(uint64(total))
	}
	v.println(v.st.muted.Render(msg))
}

// ShowHelp prints the command summary.
func (v *View) ShowHelp() {
	v.println(v.st.panel.Render(strings.Join([]string{
		v.st.title.Render("Commands"),
		"<url>                    fetch video information",
		"<number>                 select a quality",
		"download [mp4|mp3|both]  download the selection",
		"dismiss                  dismiss the current message",
		"help                     show this help",
		"quit                     exit",
	}, "\n")))
}
