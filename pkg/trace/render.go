package trace

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type palette map[Kind]*color.Color

func newPalette(enabled bool) palette {
	p := palette{
		KindSever:   color.New(color.FgYellow),
		KindRetain:  color.New(color.FgRed, color.Bold),
		KindClear:   color.New(color.FgCyan),
		KindReclaim: color.New(color.FgGreen),
		KindHook:    color.New(color.FgMagenta),
		KindDrop:    color.New(color.FgBlue, color.Bold),
	}
	for _, c := range p {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Render writes a human readable listing of t to w, one step per line,
// followed by a summary of what was left alive.
func Render(w io.Writer, t *Trace, colorize bool) error {
	p := newPalette(colorize)
	header := color.New(color.Bold)
	if colorize {
		header.EnableColor()
	} else {
		header.DisableColor()
	}

	if _, err := header.Fprintf(w, "scenario %s: drop s%d\n", t.Scenario, t.Dropped); err != nil {
		return err
	}
	for i, e := range t.Events {
		line := e.String()
		if c, ok := p[e.Kind]; ok {
			line = c.Sprint(line)
		}
		if e.Path != "" {
			line += " at " + e.Path
		}
		if _, err := fmt.Fprintf(w, "%4d  %s\n", i+1, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "live scopes: %d, live elements: %v\n", t.LiveScopes, t.LiveElements)
	return err
}
