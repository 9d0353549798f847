package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	severityStyles = map[Severity]lipgloss.Style{
		SeverityError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		SeverityWarning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		SeverityNote:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	}
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Formatter renders diagnostics as a header line, the source lines they
// point at with underlines, then notes and help.
//
//	error[PARSE_EXHAUSTED_ALTERNATIVES]: expected `{` or `;`, found `mod`
//	  --> lib.rn:2:1
//	   |
//	 2 | mod b;
//	   | ^^^
//	   |
type Formatter struct {
	out     io.Writer
	color   bool
	sources map[string]string
}

// NewFormatter returns a formatter writing to out, styled with ANSI colors
// when color is set.
func NewFormatter(out io.Writer, color bool) *Formatter {
	return &Formatter{out: out, color: color, sources: make(map[string]string)}
}

// AddSource registers the text of filename. Snippets for files that were
// never added are read from disk.
func (f *Formatter) AddSource(filename, src string) {
	f.sources[filename] = src
}

// LoadSource returns the text of filename, reading it once.
func (f *Formatter) LoadSource(filename string) (string, error) {
	if src, ok := f.sources[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	f.sources[filename] = string(data)
	return string(data), nil
}

// Format writes one diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	io.WriteString(f.out, f.render(d))
}

// FormatAll sorts diags by position and writes each followed by a blank
// line.
func (f *Formatter) FormatAll(diags []Diagnostic) {
	sorted := append([]Diagnostic(nil), diags...)
	Sort(sorted)
	for _, d := range sorted {
		io.WriteString(f.out, f.render(d)+"\n")
	}
}

func (f *Formatter) render(d Diagnostic) string {
	var b strings.Builder

	severity := d.Severity
	if severity == "" {
		severity = SeverityError
	}
	head := string(severity)
	if d.Code != "" {
		head += "[" + string(d.Code) + "]"
	}
	fmt.Fprintf(&b, "%s: %s\n", f.paint(severityStyles[severity], head), d.Message)

	labels := d.Labels
	if len(labels) == 0 && d.Span.IsValid() {
		labels = []LabeledSpan{{Span: d.Span}}
	}
	if len(labels) > 0 {
		first := labels[0].Span
		src, err := f.LoadSource(first.Filename)
		if first.Filename == "" || err != nil {
			fmt.Fprintf(&b, "  --> %s\n", first)
		} else {
			f.snippet(&b, src, labels)
		}
	}

	for _, note := range d.Notes {
		fmt.Fprintf(&b, "  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "help: %s\n", d.Help)
	}
	return b.String()
}

// snippet renders the lines touched by labels in the first label's file.
func (f *Formatter) snippet(b *strings.Builder, src string, labels []LabeledSpan) {
	filename := labels[0].Span.Filename
	lines := strings.Split(src, "\n")

	byLine := make(map[int][]LabeledSpan)
	var numbers []int
	for _, l := range labels {
		n := l.Span.Line
		if l.Span.Filename != filename || n < 1 || n > len(lines) {
			continue
		}
		if _, seen := byLine[n]; !seen {
			numbers = append(numbers, n)
		}
		byLine[n] = append(byLine[n], l)
	}
	sort.Ints(numbers)

	width := len(strconv.Itoa(len(lines)))
	empty := f.paint(gutterStyle, strings.Repeat(" ", width)+" |")

	fmt.Fprintf(b, "  --> %s\n", labels[0].Span)
	fmt.Fprintf(b, " %s\n", empty)
	for _, n := range numbers {
		text := lines[n-1]
		fmt.Fprintf(b, " %s %s\n", f.paint(gutterStyle, fmt.Sprintf("%*d |", width, n)), text)
		fmt.Fprintf(b, " %s %s\n", empty, underline(text, byLine[n]))
	}
	fmt.Fprintf(b, " %s\n", empty)
}

func (f *Formatter) paint(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}

// underline marks primary spans with ^ and secondary spans with ~, then
// appends the labels in column order. Primary marks win where spans overlap.
func underline(text string, labels []LabeledSpan) string {
	marks := []rune(strings.Repeat(" ", len([]rune(text))+1))

	ordered := append([]LabeledSpan(nil), labels...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Span.Column < ordered[j].Span.Column
	})

	var notes []string
	for _, l := range ordered {
		mark := '~'
		if l.Style == StylePrimary {
			mark = '^'
		}
		from := max(0, l.Span.Column-1)
		to := min(len(marks), from+max(1, l.Span.End-l.Span.Start))
		for i := from; i < to; i++ {
			if marks[i] == ' ' || mark == '^' {
				marks[i] = mark
			}
		}
		if l.Label != "" {
			notes = append(notes, l.Label)
		}
	}

	out := strings.TrimRight(string(marks), " ")
	if len(notes) > 0 {
		out += " " + strings.Join(notes, "; ")
	}
	return out
}
