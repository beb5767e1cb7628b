package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/signature-opensource/cksetup/internal/setup"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Color palette shared by plan and run output.
var (
	colorPrimary = lipgloss.Color("39")  // Blue
	colorSuccess = lipgloss.Color("34")  // Green
	colorWarning = lipgloss.Color("214") // Orange
	colorMuted   = lipgloss.Color("240") // Dark gray
)

type planStyles struct {
	title   lipgloss.Style
	section lipgloss.Style
	item    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

// newPlanStyles binds styles to w so that colors are only emitted on terminals.
func newPlanStyles(w io.Writer) planStyles {
	r := lipgloss.NewRenderer(w)
	return planStyles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		section: r.NewStyle().Bold(true),
		item:    r.NewStyle().Foreground(colorPrimary),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning).Bold(true),
	}
}

func renderPlan(w io.Writer, plan *setup.Plan) {
	st := newPlanStyles(w)
	var b strings.Builder

	b.WriteString(st.title.Render(fmt.Sprintf("Plan: %d script(s) in %d step(s)", plan.ScriptCount(), len(plan.Steps))))
	b.WriteString("\n\n")

	if len(plan.States) > 0 {
		b.WriteString(st.section.Render("Items"))
		b.WriteString("\n")
		width := 0
		for _, s := range plan.States {
			width = max(width, len(s.Item.FullName))
		}
		for _, s := range plan.States {
			name := fmt.Sprintf("%-*s", width, s.Item.FullName)
			fmt.Fprintf(&b, "  %s  %s -> %s  %s\n",
				st.item.Render(name),
				cksetup.VersionString(s.Installed),
				cksetup.VersionString(s.Reached),
				itemStatus(st, s))
		}
		b.WriteString("\n")
	}

	if plan.IsEmpty() {
		b.WriteString(st.muted.Render("Nothing to run."))
		b.WriteString("\n")
		fmt.Fprint(w, b.String())
		return
	}

	b.WriteString(st.section.Render("Steps"))
	b.WriteString("\n")
	for i, step := range plan.Steps {
		fmt.Fprintf(&b, "  %d. %s %s %s\n", i+1,
			st.item.Render(step.Item.FullName), step.Phase, st.muted.Render("["+step.Handler.ScriptType()+"]"))
		for _, script := range step.Vector.Scripts {
			fmt.Fprintf(&b, "       %s\n", script)
		}
	}
	fmt.Fprint(w, b.String())
}

func itemStatus(st planStyles, s *setup.ItemState) string {
	switch {
	case s.Partial():
		return st.warning.Render("partial: desired " + cksetup.VersionString(s.Desired) + " not reachable")
	case s.Installed == nil && s.Reached != nil:
		return st.success.Render("install")
	case s.Changed():
		return st.success.Render("upgrade")
	default:
		return st.muted.Render("unchanged")
	}
}

func renderRun(w io.Writer, run setup.RunResult) {
	st := newPlanStyles(w)
	fmt.Fprintf(w, "%s %d script(s) in %d step(s), %d version(s) recorded %s\n",
		st.success.Render("Applied"), run.Scripts, run.Steps, len(run.Recorded),
		st.muted.Render("(run "+run.RunID.String()+")"))
}
