// Package report renders a simulation report as Markdown, and as HTML via gomarkdown.
package report

import (
	"fmt"
	"io"
	"strings"

	"bridgesim/app"
	"bridgesim/domain/reliability"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Options controls optional sections
type Options struct {
	IncludeMaterials bool
	// MaxTrialRows caps the per-trial table; zero omits it.
	MaxTrialRows int
}

// Markdown renders the report as GitHub-flavoured Markdown
func Markdown(r *app.SimulationReport, opts Options) string {
	var b strings.Builder
	res := r.Result

	fmt.Fprintf(&b, "# Bridge Failure Probability Simulation\n\n")
	fmt.Fprintf(&b, "Run `%s` · seed %d · fingerprint `%s`\n\n", r.RunID, r.Seed, r.Fingerprint.Short())

	b.WriteString("## Bridge Parameters\n\n")
	b.WriteString("| Parameter | Mean | Std. Deviation |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| Length (m) | %g | %g |\n", r.Scenario.Length.Mean, r.Scenario.Length.StdDev)
	fmt.Fprintf(&b, "| Width (m) | %g | %g |\n", r.Scenario.Width.Mean, r.Scenario.Width.StdDev)
	fmt.Fprintf(&b, "| Material strength (%s) | %g | %g |\n", strengthUnit(r.StressUnit), r.Scenario.Strength.Mean, r.Scenario.Strength.StdDev)
	fmt.Fprintf(&b, "| Load (N) | %g | %g |\n\n", r.Load.Mean, r.Load.StdDev)

	b.WriteString("## Results\n\n")
	fmt.Fprintf(&b, "- Number of Iterations: %d\n", res.TrialCount)
	fmt.Fprintf(&b, "- Number of Failures: %d\n", res.FailureCount)
	fmt.Fprintf(&b, "- Probability of Failure: %.2f%%\n", res.FailureProbability*100)
	fmt.Fprintf(&b, "- %.0f%% interval: %.2f%% to %.2f%%\n", r.Interval.Confidence*100, r.Interval.Lower*100, r.Interval.Upper*100)
	if res.DegenerateCount > 0 {
		fmt.Fprintf(&b, "- Excluded trials (non-positive area): %d\n", res.DegenerateCount)
	}
	b.WriteString("\n")

	if r.Safe {
		b.WriteString("**The bridge is safe!** No trial exceeded the material strength.\n\n")
	}

	if r.LoadSummary != nil {
		s := r.LoadSummary
		b.WriteString("## Distribution of Failure Loads\n\n")
		fmt.Fprintf(&b, "Mean %.2f N, std. deviation %.2f N, median %.2f N, range %.2f N to %.2f N.\n\n",
			s.Mean, s.StdDev, s.Median, s.Min, s.Max)
		b.WriteString("| Load from (N) | Load to (N) | Frequency |\n|---:|---:|---:|\n")
		for _, bin := range r.Histogram {
			fmt.Fprintf(&b, "| %.2f | %.2f | %d |\n", bin.Lower, bin.Upper, bin.Count)
		}
		b.WriteString("\n")
	}

	if opts.MaxTrialRows > 0 && len(res.Trials) > 0 {
		b.WriteString("## Bridge Parameters Table\n\n")
		fmt.Fprintf(&b, "| Iteration | Length (m) | Width (m) | Strength (%s) | Load (N) | Failed |\n", strengthUnit(r.StressUnit))
		b.WriteString("|---:|---:|---:|---:|---:|:---:|\n")
		for i, t := range res.Trials {
			if i >= opts.MaxTrialRows {
				fmt.Fprintf(&b, "\n%d more trials not shown.\n", len(res.Trials)-opts.MaxTrialRows)
				break
			}
			fmt.Fprintf(&b, "| %d | %.2f | %.2f | %.2f | %.2f | %s |\n", t.Index, t.Length, t.Width, t.Strength, t.Load, trialOutcome(t))
		}
		b.WriteString("\n")
	}

	if opts.IncludeMaterials {
		b.WriteString(MaterialsMarkdown())
	}

	return b.String()
}

// MaterialsMarkdown renders the reference table of common bridge materials
func MaterialsMarkdown() string {
	var b strings.Builder
	b.WriteString("## Common Bridge Materials and Their Strength\n\n")
	b.WriteString("| Material | Strength |\n|---|---|\n")
	for _, m := range reliability.Materials() {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Name, m)
	}
	b.WriteString("\n")
	return b.String()
}

// HTML converts rendered Markdown into a standalone HTML page
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Bridge Failure Probability Simulation",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// Write renders the report to w, as HTML when asHTML is set
func Write(w io.Writer, r *app.SimulationReport, opts Options, asHTML bool) error {
	md := Markdown(r, opts)
	if asHTML {
		_, err := w.Write(HTML(md))
		return err
	}
	_, err := io.WriteString(w, md)
	return err
}

func strengthUnit(u reliability.StressUnit) string {
	if u == reliability.StressUnitMegapascal {
		return "MPa"
	}
	return "N/m²"
}

func trialOutcome(t reliability.Trial) string {
	switch {
	case t.Degenerate:
		return "excluded"
	case t.Failed:
		return "yes"
	default:
		return "no"
	}
}
