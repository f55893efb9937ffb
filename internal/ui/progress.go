package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"hunit/internal/domain"
)

// ProgressBar renders the live run state on stderr.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar for count planned tests.
func NewProgressBar(count int) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(domain.Snapshot{Counts: map[domain.Outcome]int{}})),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Update redraws the bar from a run snapshot.
func (p *ProgressBar) Update(snap domain.Snapshot) {
	p.bar.Set(snap.Run)
	p.bar.Describe(describe(snap))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

func describe(snap domain.Snapshot) string {
	bad := snap.Counts[domain.OutcomeFail] + snap.Counts[domain.OutcomeError]
	return color.CyanString("Running tests: ") +
		color.GreenString("[pass: %d", snap.Counts[domain.OutcomePass]) +
		" | " +
		color.RedString("bad: %d", bad) +
		" | " +
		color.BlueString("skip: %d]", snap.Counts[domain.OutcomeSkip])
}
