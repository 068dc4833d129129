package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/malla/internal/config"
	"github.com/jask/malla/internal/curriculum"
)

const (
	headerLines = 2
	footerLines = 2
	detailWidth = 44
	sideMin     = 90 // narrower terminals stack the detail panel below the tree
)

type mark int

const (
	markNone mark = iota
	markBefore
	markAfter
)

func (a *App) View() string {
	if a.loadErr != nil {
		return a.renderLoadError()
	}
	if a.reg == nil {
		return titleStyle.Render("malla") + "\n\n" + statusStyle.Render("Loading courses…")
	}
	var body string
	switch a.view {
	case viewHistory:
		body = a.renderHistory()
	default:
		body = a.renderTree()
	}
	out := a.renderHeader() + "\n" + body + "\n" + a.renderFooter()
	if a.modal != modalNone {
		out = overlayCenter(out, a.renderModal(), a.width, a.height)
	}
	return out
}

func (a *App) renderLoadError() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("malla"))
	b.WriteString("\n\n")
	b.WriteString(errorStyle.Render("Could not load courses."))
	b.WriteString("\n")
	b.WriteString(a.loadErr.Error())
	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render("Check catalog.source in the config file (or MALLA_CATALOG_SOURCE) and restart."))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q quit"))
	return b.String()
}

func (a *App) renderHeader() string {
	s := a.reg.Summary()
	title := titleStyle.Render("malla") + labelStyle.Render("  "+a.cfg.Catalog.Source)
	parts := []string{
		fmt.Sprintf("%d/%d completed (%d%%)", s.Completed, s.Total, s.Percent()),
		fmt.Sprintf("%d in progress", s.InProgress),
		fmt.Sprintf("%d eligible for final", s.Eligible),
	}
	if s.Credits > 0 {
		parts = append(parts, fmt.Sprintf("credits %d/%d", s.CreditsCompleted, s.Credits))
	}
	parts = append(parts, "mode "+a.mode)
	return a.fit(title) + "\n" + a.fit(statusStyle.Render(strings.Join(parts, " · ")))
}

func (a *App) renderFooter() string {
	status := statusStyle.Render(a.status)
	if strings.HasPrefix(a.status, "error") || strings.Contains(a.status, "failed") {
		status = errorStyle.Render(a.status)
	}
	var help []string
	if a.view == viewHistory {
		help = []string{"h/esc back", "q quit"}
	} else {
		for _, b := range a.keys.footerBindings() {
			h := b.Help()
			desc := h.Desc
			if b.Help().Key == a.keys.Primary.Help().Key && a.mode == config.ModeToggle {
				desc = "advance"
			}
			help = append(help, h.Key+" "+desc)
		}
	}
	line := strings.Join(help, " · ")
	if a.width > 2 {
		line = ansi.Truncate(line, a.width-2, "…")
	}
	return a.fit(status) + "\n" + footerStyle.Render(line)
}

// fit truncates a rendered line to the terminal width.
func (a *App) fit(s string) string {
	if a.width <= 0 {
		return s
	}
	return ansi.Truncate(s, a.width, "…")
}

func (a *App) detailBeside() bool {
	return a.width == 0 || a.width >= sideMin
}

func (a *App) treeWidth() int {
	if a.width <= 0 {
		return 0
	}
	if a.selected != "" && a.detailBeside() {
		return max(10, a.width-detailWidth-1)
	}
	return a.width
}

// treeHeight is the number of tree rows that fit on screen.
func (a *App) treeHeight() int {
	if a.height <= 0 {
		return max(1, len(a.tree.rows))
	}
	h := a.height - headerLines - footerLines
	if d := a.renderDetail(); d != "" && !a.detailBeside() {
		h -= lipgloss.Height(d)
	}
	return max(1, h)
}

// courseAtPoint maps a screen cell to the course drawn there.
func (a *App) courseAtPoint(x, y int) (curriculum.ID, bool) {
	line := y - headerLines
	if line < 0 || line >= a.treeHeight() {
		return "", false
	}
	if w := a.treeWidth(); w > 0 && x >= w {
		return "", false
	}
	return a.tree.courseAt(a.offset + line)
}

func (a *App) marks() map[curriculum.ID]mark {
	out := map[curriculum.ID]mark{}
	if a.selected == "" {
		return out
	}
	before, after := a.reg.Related(a.selected)
	// ids without a row are dangling references; nothing to highlight
	for _, id := range before {
		if a.tree.rowOf(id) >= 0 {
			out[id] = markBefore
		}
	}
	for _, id := range after {
		if a.tree.rowOf(id) >= 0 {
			out[id] = markAfter
		}
	}
	return out
}

func (a *App) renderTree() string {
	if len(a.tree.rows) == 0 {
		return statusStyle.Render("No courses in the catalog.")
	}
	width := a.treeWidth()
	marks := a.marks()
	current := a.tree.rowOf(a.currentID())
	end := min(a.offset+a.treeHeight(), len(a.tree.rows))

	lines := make([]string, 0, end-a.offset)
	for i := a.offset; i < end; i++ {
		lines = append(lines, a.renderRow(a.tree.rows[i], i == current, marks, width))
	}
	list := strings.Join(lines, "\n")

	detail := a.renderDetail()
	switch {
	case detail == "":
		return list
	case a.detailBeside():
		if width > 0 {
			list = lipgloss.NewStyle().Width(width).Render(list)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
	default:
		return list + "\n" + detail
	}
}

func (a *App) renderRow(r row, current bool, marks map[curriculum.ID]mark, width int) string {
	var line string
	switch r.kind {
	case rowYear:
		line = yearStyle.Render(fmt.Sprintf("Year %d", r.year))
	case rowTerm:
		line = "  " + termStyle.Render(r.term)
	default:
		line = a.renderCourse(r.id, current, marks[r.id])
	}
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func (a *App) renderCourse(id curriculum.ID, current bool, m mark) string {
	c, _ := a.reg.Course(id)
	eligible := a.reg.Eligible(id)

	cursor := "  "
	if current {
		cursor = "▶ "
	}
	flag := " "
	if eligible {
		flag = eligibleStyle.Render("★")
	}

	style := stateStyle(c.State)
	suffix := ""
	switch {
	case m == markBefore:
		style = beforeStyle
		suffix = labelStyle.Render(" [before]")
	case m == markAfter:
		style = afterStyle
		suffix = labelStyle.Render(" [after]")
	case eligible:
		style = eligibleStyle
	}
	if id == a.selected || current {
		style = style.Inherit(cursorStyle)
	}
	glyph := stateStyle(c.State).Render(stateGlyph(c.State))
	return cursor + "  " + glyph + " " + flag + " " + style.Render(c.Name) + suffix
}

func (a *App) renderDetail() string {
	if a.selected == "" {
		return ""
	}
	c, ok := a.reg.Course(a.selected)
	if !ok {
		return ""
	}
	pre, _ := a.reg.DescribePrerequisites(c.ID)

	lines := []string{
		titleStyle.Render(c.Name),
		labelStyle.Render("ID ") + string(c.ID) +
			labelStyle.Render("  Year ") + strconv.Itoa(c.Year) +
			labelStyle.Render("  Term ") + c.Term,
		labelStyle.Render("State ") + stateStyle(c.State).Render(stateGlyph(c.State)+" "+c.State.Label()),
		labelStyle.Render("Credits ") + creditsLabel(c.Credits),
	}
	if a.reg.Eligible(c.ID) {
		lines = append(lines, eligibleStyle.Render("★ eligible for the final exam"))
	}
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		desc = "No description available."
	}
	lines = append(lines,
		"",
		desc,
		"",
		beforeStyle.Render("Before: ")+pre.Before,
		afterStyle.Render("After: ")+pre.After,
		"",
		statusStyle.Render("enter/space advance · esc close"),
	)

	w := detailWidth
	if !a.detailBeside() {
		w = max(20, a.width)
	}
	return panelStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}

// creditsLabel renders a credit count; catalogs without one load as 0.
func creditsLabel(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}

func (a *App) renderHistory() string {
	var b strings.Builder
	b.WriteString(yearStyle.Render("Recent changes"))
	b.WriteString("\n")
	if a.progress.History == nil {
		b.WriteString(statusStyle.Render("History is only kept with the sqlite storage backend."))
		return b.String()
	}
	if len(a.history) == 0 {
		b.WriteString(statusStyle.Render("No changes recorded yet."))
		return b.String()
	}
	for _, rec := range a.history {
		from := curriculum.State(rec.From)
		to := curriculum.State(rec.To)
		line := fmt.Sprintf("%s  %s  %s → %s",
			labelStyle.Render(rec.ChangedAt.Local().Format("2006-01-02 15:04")),
			a.reg.Name(curriculum.ID(rec.CourseID)),
			stateStyle(from).Render(from.Label()),
			stateStyle(to).Render(to.Label()),
		)
		b.WriteString(a.fit(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderModal() string {
	var body string
	switch a.modal {
	case modalSearch:
		var b strings.Builder
		b.WriteString(titleStyle.Render("Find course"))
		b.WriteString("\n")
		b.WriteString(a.search.View())
		b.WriteString("\n\n")
		if len(a.results) == 0 && a.search.Value() != "" {
			b.WriteString(statusStyle.Render("no matches"))
		}
		for i, c := range a.results {
			prefix := "  "
			if i == a.resultCursor {
				prefix = "▶ "
			}
			line := fmt.Sprintf("%s%s %s", prefix, labelStyle.Render(string(c.ID)), c.Name)
			if i == a.resultCursor {
				line = cursorStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("enter jump · esc cancel"))
		body = b.String()
	case modalConfirmReset:
		body = errorStyle.Render("Reset all progress?") + "\n\n" +
			"Every course goes back to pending and the history is cleared.\n\n" +
			statusStyle.Render("y confirm · n cancel")
	}
	return modalStyle.Render(body)
}
