package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"hunit/internal/report"
)

// FailureViewer displays the durable failure log in an interactive TUI.
type FailureViewer struct {
	log *report.FailureLog
}

// NewFailureViewer creates a viewer over the given log.
func NewFailureViewer(log *report.FailureLog) *FailureViewer {
	return &FailureViewer{log: log}
}

// View opens the interactive viewer. Navigation: up/down to select, right to
// focus details, r to toggle resolved (persisted), Ctrl+C to exit.
func (v *FailureViewer) View() error {
	entries, err := v.log.Load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	itemText := func(i int) string {
		entry := entries[i]
		if entry.Resolved {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", i+1, entry.ID)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", i+1, entry.ID)
	}
	for i := range entries {
		list.AddItem(itemText(i), "", 0, nil)
	}

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	unresolved := func() int {
		n := 0
		for _, entry := range entries {
			if !entry.Resolved {
				n++
			}
		}
		return n
	}
	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, Ctrl+C exit ",
			len(entries), unresolved()))
	}
	updateDetails := func() {
		i := list.GetCurrentItem()
		if i >= 0 && i < len(entries) {
			detailsView.SetText(formatEntry(entries[i]))
		}
	}
	updateHeader()
	updateDetails()

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				i := list.GetCurrentItem()
				if i >= 0 && i < len(entries) {
					entries[i].Resolved = !entries[i].Resolved
					list.SetItemText(i, itemText(i), "")
					updateHeader()
					updateDetails()
					_ = v.log.Rewrite(entries)
				}
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(detailsView, 0, 2, false)
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func formatEntry(entry report.FailureEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", entry.ID)
	fmt.Fprintf(&b, "[cyan]Outcome:[white] %s\n", entry.Outcome)
	fmt.Fprintf(&b, "[cyan]Recorded:[white] %s\n\n", entry.Time.Local().Format("2006-01-02 15:04:05"))
	if entry.Detail != "" {
		fmt.Fprintf(&b, "[yellow]Detail:[white]\n%s\n\n", entry.Detail)
	}
	if entry.Output != "" {
		fmt.Fprintf(&b, "[yellow]Captured output:[white]\n%s\n", entry.Output)
	}
	return b.String()
}
