package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/sheetdeck/internal/sheet"
)

const (
	maxSheetWidth = 72
	// minTopGap keeps part of the background visible above a full sheet.
	minTopGap = 2
	// frameCols is the border plus horizontal padding on one side.
	frameCols = 2
)

type hitKind int

const (
	hitOutside hitKind = iota
	hitSheet
	hitHandle
	hitSlot
	hitBody
)

type slotRegion struct {
	slot   sheet.Slot
	line   int
	x0, x1 int
}

// sheetLayout locates the rendered sheet on screen. Line numbers are
// relative to the sheet's top border; x offsets are relative to x0.
type sheetLayout struct {
	visible    bool
	top, rows  int
	x0, width  int
	handleLine int
	bodyStart  int
	bodyEnd    int
	slots      []slotRegion
}

func (l sheetLayout) hit(x, y int) (hitKind, sheet.Slot) {
	if !l.visible || y < l.top || y >= l.top+l.rows || x < l.x0 || x >= l.x0+l.width {
		return hitOutside, 0
	}
	line := y - l.top
	if line <= l.handleLine {
		return hitHandle, 0
	}
	for _, r := range l.slots {
		if r.line == line && x >= l.x0+r.x0 && x < l.x0+r.x1 {
			return hitSlot, r.slot
		}
	}
	if line >= l.bodyStart && line < l.bodyEnd {
		return hitBody, 0
	}
	return hitSheet, 0
}

// composeSheet renders the full sheet, ignoring the slide, and records
// where its interactive parts are.
func (m *SheetModel) composeSheet() ([]string, sheetLayout) {
	cfg := m.panel.Config()
	pr := m.panel.Progress()

	width := min(m.width, maxSheetWidth)
	inner := max(width-2*frameCols, 1)
	lay := sheetLayout{x0: (m.width - width) / 2, width: width}

	var rows []string
	line := func() int { return len(rows) + 1 } // +1 for the top border

	lay.handleLine = line()
	if cfg.DragClose {
		rows = append(rows, center(HandleStyle.Render("━━━━━━"), 6, inner))
	} else {
		rows = append(rows, "")
	}

	header, slots := m.headerRow(cfg, inner, line())
	rows = append(rows, header)
	lay.slots = append(lay.slots, slots...)

	if cfg.Description != "" {
		rows = append(rows, DescriptionStyle.Render(runewidth.Truncate(cfg.Description, inner, "…")))
	}

	// Mode none takes no space; a completed indicator keeps its row
	if !pr.Removed() {
		rows = append(rows, m.progressRow(pr, inner))
	}
	rows = append(rows, "")

	fixed := len(rows) + 2
	if cfg.CTAPrimary != "" || cfg.CTASecondary != "" {
		fixed += 2
	}
	content := m.contentLines(inner)
	maxBody := max(m.stageHeight()-minTopGap-fixed, 0)
	bodyH := min(len(content), maxBody)
	if cfg.Size == sheet.SizeFull {
		bodyH = maxBody
	}
	lay.bodyStart = line()
	if bodyH > 0 {
		m.body.Width = inner
		m.body.Height = bodyH
		m.body.SetContent(strings.Join(content, "\n"))
		rows = append(rows, splitLines(m.body.View())...)
	}
	lay.bodyEnd = line()

	if cfg.CTAPrimary != "" || cfg.CTASecondary != "" {
		rows = append(rows, "")
		cta, slots := ctaRow(cfg, inner, line())
		rows = append(rows, cta)
		lay.slots = append(lay.slots, slots...)
	}

	box := SheetBoxStyle.Width(inner + 2).Render(strings.Join(rows, "\n"))
	return splitLines(box), lay
}

func (m *SheetModel) headerRow(cfg sheet.Config, inner, line int) (string, []slotRegion) {
	var slots []slotRegion
	labelMax := max(inner/3, 1)
	left, right := "", ""
	if cfg.IconLeft != "" {
		left = "‹ " + runewidth.Truncate(cfg.IconLeft, labelMax, "…")
	}
	if cfg.IconRight != "" {
		right = runewidth.Truncate(cfg.IconRight, labelMax, "…") + " ✕"
	}
	lw, rw := runewidth.StringWidth(left), runewidth.StringWidth(right)
	if lw > 0 {
		slots = append(slots, slotRegion{slot: sheet.SlotIconLeft, line: line, x0: frameCols, x1: frameCols + lw})
	}
	if rw > 0 {
		slots = append(slots, slotRegion{slot: sheet.SlotIconRight, line: line, x0: frameCols + inner - rw, x1: frameCols + inner})
	}

	mid := max(inner-lw-rw, 0)
	heading := runewidth.Truncate(cfg.Heading, max(mid-2, 0), "…")
	return IconStyle.Render(left) + center(HeadingStyle.Render(heading), runewidth.StringWidth(heading), mid) + IconStyle.Render(right), slots
}

func ctaRow(cfg sheet.Config, inner, line int) (string, []slotRegion) {
	var slots []slotRegion
	var parts []string
	var widths []int
	if cfg.CTASecondary != "" {
		label := "[ " + runewidth.Truncate(cfg.CTASecondary, max(inner/2-4, 1), "…") + " ]"
		parts = append(parts, CTAStyle.Render(label))
		widths = append(widths, runewidth.StringWidth(label))
		slots = append(slots, slotRegion{slot: sheet.SlotCTASecondary, line: line})
	}
	if cfg.CTAPrimary != "" {
		label := "[ " + runewidth.Truncate(cfg.CTAPrimary, max(inner/2-4, 1), "…") + " ]"
		parts = append(parts, CTAPrimaryStyle.Render(label))
		widths = append(widths, runewidth.StringWidth(label))
		slots = append(slots, slotRegion{slot: sheet.SlotCTAPrimary, line: line})
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * (len(widths) - 1)
	x := frameCols + max(inner-total, 0)
	for i, w := range widths {
		slots[i].x0, slots[i].x1 = x, x+w
		x += w + 2
	}
	return strings.Repeat(" ", max(inner-total, 0)) + strings.Join(parts, "  "), slots
}

func (m *SheetModel) progressRow(pr sheet.Progress, inner int) string {
	if !pr.Visible() {
		return ""
	}
	if pr.Mode() == sheet.ProgressIndeterminate {
		return m.spin.View() + ProgressLabel.Render(" working…")
	}
	m.bar.Width = max(inner-5, 1)
	return m.bar.ViewAs(pr.Value()) + ProgressLabel.Render(fmt.Sprintf(" %3d%%", pr.Percent()))
}

func (m *SheetModel) contentLines(inner int) []string {
	wrap := lipgloss.NewStyle().Width(inner)
	var out []string
	for _, block := range m.panel.Content() {
		out = append(out, splitLines(wrap.Render(block))...)
	}
	return out
}

// stageHeight is the screen area above the status bar.
func (m *SheetModel) stageHeight() int {
	return max(m.height-1, 1)
}

func center(s string, w, width int) string {
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// View implements tea.Model.
func (m *SheetModel) View() string {
	if m.quitting {
		return ""
	}
	bg := BackgroundStyle
	if m.drawn && m.panel.BlockBg() {
		bg = BackdropStyle
	}
	base := bg.Render(m.background.View()) + "\n" + m.statusBar()
	if !m.layout.visible {
		return base
	}
	sheetView := strings.Join(m.sheetLines[:m.layout.rows], "\n")
	return overlayAt(base, sheetView, m.layout.x0, m.layout.top, m.width)
}

func (m *SheetModel) statusBar() string {
	p := m.panel
	lock := "off"
	if m.doc.Scroll.Locked() {
		lock = "on"
	}
	status := fmt.Sprintf("%s %s  %s %s  %s %d",
		StatusKeyStyle.Render("state"), p.State(),
		StatusKeyStyle.Render("scroll-lock"), lock,
		StatusKeyStyle.Render("listeners"), m.doc.Listeners.Count())
	if p.IsDragging() {
		status += fmt.Sprintf("  %s %d", StatusKeyStyle.Render("drag"), p.DragDelta())
	}
	if m.lastEvent != "" {
		status += "  " + StatusKeyStyle.Render("last") + " " + m.lastEvent
	}
	if m.err != nil {
		status += "  " + ErrorStyle.Render(m.err.Error())
	}
	status += "   " + helpLine(keys.help())
	return StatusBarStyle.Render(ansi.Truncate(status, m.width, "…"))
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
