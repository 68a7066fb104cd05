package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = 2

// palette holds the styles of one output stream.
type palette struct {
	header lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	dim    lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		header: r.NewStyle().Bold(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:    r.NewStyle().Faint(true),
	}
}

// table renders left-aligned columns. Cell widths are measured without
// ANSI sequences so styled cells line up.
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer, p palette) error {
	widths := make([]int, len(t.header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}

	header := make([]string, len(t.header))
	for i, h := range t.header {
		header[i] = p.header.Render(h)
	}
	if err := writeRow(w, header, widths); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cells []string, widths []int) error {
	var b strings.Builder
	for i, c := range cells {
		b.WriteString(c)
		if i == len(cells)-1 {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)+columnGap))
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}

// fields renders aligned "label: value" lines, skipping empty values.
type fields struct {
	labels []string
	values []string
}

func (f *fields) add(label, value string) {
	if value == "" {
		return
	}
	f.labels = append(f.labels, label)
	f.values = append(f.values, value)
}

func (f *fields) render(w io.Writer, p palette) error {
	width := 0
	for _, l := range f.labels {
		width = max(width, len(l))
	}
	for i, l := range f.labels {
		label := p.header.Render(l + ":")
		pad := strings.Repeat(" ", width-len(l)+1)
		if _, err := fmt.Fprintf(w, "%s%s%s\n", label, pad, f.values[i]); err != nil {
			return err
		}
	}
	return nil
}
