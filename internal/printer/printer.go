// Package printer formats boardctl output: coloured status lines, errors
// with suggestions, and the text rendering of a board snapshot.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/kanban"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Printer writes to out and errOut. Colour is on only when out is a terminal
// and NO_COLOR is unset.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	ids    bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
	faint  *color.Color
}

func New(out, errOut io.Writer) *Printer {
	p := &Printer{
		out:    out,
		errOut: errOut,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
	}

	enabled := os.Getenv("NO_COLOR") == "" && isTerminal(out)
	for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.bold, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShowIDs makes Board print entity ids next to names.
func (p *Printer) ShowIDs(on bool) { p.ids = on }

// Success prints a success message in green with a checkmark prefix
func (p *Printer) Success(format string, a ...any) {
	p.green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Info prints an informational message in the default color
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format+"\n", a...)
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(format string, a ...any) {
	p.yellow.Fprintf(p.errOut, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Step prints a step message with emphasis
func (p *Printer) Step(format string, a ...any) {
	p.cyan.Fprintf(p.out, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to errOut and returns a
// plain error for cobra, which has SilenceErrors set.
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	p.red.Fprintf(p.errOut, "%s\n", title)

	if explanation != "" {
		fmt.Fprintf(p.errOut, "\n%s\n", explanation)
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(p.errOut, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(p.errOut, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.errOut, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(p.errOut, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	return fmt.Errorf("%s", title)
}

// Board renders a snapshot: clients with their projects and assigned
// consultants, then the available bucket. Minimized clients hide their
// projects and collapsed projects hide their consultants.
func (p *Printer) Board(snap kanban.Snapshot, status kanban.Status) {
	if status.Loading {
		p.faint.Fprintln(p.out, "loading…")
	}
	if status.Error != "" {
		p.red.Fprintln(p.out, status.Error)
	}

	if len(snap.Clients) == 0 {
		p.faint.Fprintln(p.out, "no clients yet")
	}
	for _, c := range snap.Clients {
		marker := "▾"
		if !c.Expanded {
			marker = "▸"
		}
		p.bold.Fprintf(p.out, "%s %s", marker, c.Name)
		p.id(c.ID)
		fmt.Fprintf(p.out, " %s\n", p.faint.Sprintf("(%s)", plural(len(c.Projects), "project")))
		if !c.Expanded {
			continue
		}

		for _, proj := range c.Projects {
			marker := "▾"
			if proj.Collapsed {
				marker = "▸"
			}
			fmt.Fprintf(p.out, "  %s %s", marker, p.cyan.Sprint(proj.Title))
			p.id(proj.ID)
			fmt.Fprintf(p.out, " %s\n", p.faint.Sprintf("(%d)", len(proj.Consultants)))
			if proj.Collapsed {
				continue
			}
			for _, x := range proj.Consultants {
				p.consultant("      ", x)
			}
		}
	}

	fmt.Fprintln(p.out)
	p.green.Fprintf(p.out, "%s", kanban.AvailableLabel)
	fmt.Fprintf(p.out, " %s\n", p.faint.Sprintf("(%d)", len(snap.Available)))
	for _, x := range snap.Available {
		p.consultant("  ", x)
	}
}

func (p *Printer) consultant(indent string, x kanban.ConsultantView) {
	fmt.Fprintf(p.out, "%s• %s", indent, x.Name)
	if x.Role != "" {
		fmt.Fprintf(p.out, " %s", p.faint.Sprintf("· %s", x.Role))
	}
	p.id(x.ID)
	fmt.Fprintln(p.out)
}

func (p *Printer) id(id string) {
	if p.ids {
		fmt.Fprintf(p.out, " %s", p.faint.Sprintf("[%s]", id))
	}
}

// Event prints one change notification as a single line.
func (p *Printer) Event(ev boardevents.Event) {
	ts := ev.PublishedAt.Local().Format("15:04:05")
	kind := string(ev.Kind)

	var subject string
	switch {
	case ev.Kind.IsDelete():
		id, _ := ev.DeletedID()
		subject = id
	case ev.Kind.Entity() == boardevents.EntityClient:
		c, _ := ev.Client()
		subject = c.Name
	case ev.Kind.Entity() == boardevents.EntityProject:
		proj, _ := ev.Project()
		subject = proj.Title
	case ev.Kind.Entity() == boardevents.EntityConsultant:
		x, _ := ev.Consultant()
		subject = x.Name
		if x.Project != nil {
			subject += " → " + x.Project.Title
		} else if ev.Kind == boardevents.ConsultantMoved {
			subject += " → " + kanban.AvailableLabel
		}
	}

	c := p.cyan
	if ev.Kind.IsDelete() {
		c = p.yellow
	}
	fmt.Fprintf(p.out, "%s %s %s\n", p.faint.Sprint(ts), c.Sprintf("%-18s", kind), subject)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
