package console

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/mmcdole/letterplex/internal/domain"
)

const barWidth = 30

// ProgressPrinter renders progress updates as static bar lines.
// It implements domain.ProgressObserver.
type ProgressPrinter struct {
	out io.Writer
	bar progress.Model
}

// NewProgressPrinter creates a printer writing to out
func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	return &ProgressPrinter{
		out: out,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
	}
}

// OnProgress prints one bar line
func (p *ProgressPrinter) OnProgress(pr domain.Progress) {
	fmt.Fprintf(p.out, "%s %s\n",
		p.bar.ViewAs(pr.Percent()/100),
		DimStyle.Render(fmt.Sprintf("%d/%d movies processed", pr.Processed, pr.Total)),
	)
}

// Banner prints the start-of-run header, including the previous run if known
func Banner(out io.Writer, version string, last *domain.RunSummary) {
	fmt.Fprintf(out, "%s %s\n", TitleStyle.Render("letterplex"), DimStyle.Render(version))
	if last == nil {
		return
	}

	status := SuccessStyle.Render(CheckMark)
	if !last.Succeeded() {
		status = ErrorStyle.Render(CrossMark)
	}
	fmt.Fprintf(out, "%s %s\n", status, SubtitleStyle.Render(fmt.Sprintf(
		"last run %s, %d new or updated",
		last.StartedAt.Local().Format(time.DateTime), last.Changes,
	)))
}

// Summary prints the outcome of a run
func Summary(out io.Writer, run domain.RunSummary) {
	if !run.Succeeded() {
		fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render(CrossMark+" Export failed:"), run.Error)
		return
	}

	fmt.Fprintf(out, "%s\n", SuccessStyle.Render(CheckMark+" Export complete"))
	fmt.Fprintf(out, "  %-12s %d\n", "watched", run.Watched)
	fmt.Fprintf(out, "  %-12s %d\n", "unwatched", run.Unwatched)
	if run.Skipped > 0 {
		fmt.Fprintf(out, "  %-12s %s\n", "skipped", ErrorStyle.Render(fmt.Sprint(run.Skipped)))
	}
	if run.DeltaFile == "" {
		fmt.Fprintf(out, "  %-12s %s\n", "new/updated", DimStyle.Render("none"))
		return
	}
	fmt.Fprintf(out, "  %-12s %d %s\n", "new/updated", run.Changes,
		AccentStyle.Render("→ "+filepath.Base(run.DeltaFile)))
}
