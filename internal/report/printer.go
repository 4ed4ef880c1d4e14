// Copyright 2024 Dotverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"dotverify/internal/harness"
)

// Printer writes one block per outcome and a closing summary.
type Printer struct {
	w     io.Writer
	ok    *color.Color
	fail  *color.Color
	faint *color.Color

	// Verbose adds the child's stderr to failed run-phase outcomes.
	Verbose bool

	outcomes []Outcome
}

// NewPrinter returns a printer for w. mode is "always", "never" or "auto";
// auto follows fatih/color's terminal and NO_COLOR detection.
func NewPrinter(w io.Writer, mode string) *Printer {
	p := &Printer{
		w:     w,
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
	}
	var enabled bool
	switch strings.ToLower(mode) {
	case "always":
		enabled = true
	case "never":
		enabled = false
	default:
		enabled = !color.NoColor
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print writes o and remembers it for the summary.
func (p *Printer) Print(o Outcome) {
	p.outcomes = append(p.outcomes, o)

	if o.Passed {
		fmt.Fprintf(p.w, "%s: %s\n", o.Name, p.ok.Sprint("Ok"))
		return
	}

	v := o.Verdict
	switch o.Message {
	case NotRaised:
		fmt.Fprintf(p.w, "%s: %s %s\n", o.Name, p.fail.Sprint("FAILED!"), NotRaised)
		p.expected(o.Expected)
	case WrongError:
		fmt.Fprintf(p.w, "%s: %s %s\n", o.Name, p.fail.Sprint("FAILED!"), WrongError)
		p.expected(o.Expected)
		fmt.Fprintf(p.w, "Cause: %s (in %s)\n", v.Cause, v.Phase)
	default:
		fmt.Fprintf(p.w, "%s: %s in %s\n", o.Name, p.fail.Sprint("FAILED"), v.Phase)
		fmt.Fprintf(p.w, "Cause: %s\n", v.Cause)
	}

	if p.Verbose && v.Phase == harness.PhaseRun && v.Stderr != "" {
		for _, line := range strings.Split(strings.TrimRight(v.Stderr, "\n"), "\n") {
			fmt.Fprintf(p.w, "  %s\n", p.faint.Sprint(line))
		}
	}
}

func (p *Printer) expected(e harness.Expectation) {
	if e.Phase != "" {
		fmt.Fprintf(p.w, "Expected cause: %s (in %s)\n", e.Cause, e.Phase)
		return
	}
	fmt.Fprintf(p.w, "Expected cause: %s\n", e.Cause)
}

// Summary writes the totals of everything printed so far and returns them.
func (p *Printer) Summary() Summary {
	s := Summarize(p.outcomes)
	line := fmt.Sprintf("%d passed, %d failed", s.Passed, s.Failed)
	if s.OK() {
		fmt.Fprintf(p.w, "\n%s\n", p.ok.Sprint(line))
	} else {
		fmt.Fprintf(p.w, "\n%s\n", p.fail.Sprint(line))
	}
	return s
}
