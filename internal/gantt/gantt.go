// Package gantt рисует расписание в виде текстовой диаграммы Ганта.
package gantt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobShop/internal/jobshop"
)

const idle = '.'

// palette — ANSI-цвета для работ, повторяются по кругу.
var palette = []string{"1", "2", "3", "4", "5", "6", "9", "10", "11", "12", "13", "14"}

type Options struct {
	// Width — максимальная ширина строки станка в ячейках. 0 — одна ячейка на единицу времени.
	Width int
	// Color раскрашивает ячейки работ, если вывод поддерживает цвет.
	Color bool
	// Legend добавляет перечень операций с временами начала и конца.
	Legend bool
}

// Render пишет диаграмму плана pl в w.
func Render(w io.Writer, pl *jobshop.Plan, opts Options) error {
	if pl == nil || !pl.Feasible {
		_, err := io.WriteString(w, "infeasible plan\n")
		return err
	}

	makespan := pl.Makespan()
	scale := Scale(makespan, opts.Width)
	cells := 0
	if makespan > 0 {
		cells = (makespan + scale - 1) / scale
	}

	var styles func(job int) lipgloss.Style
	if opts.Color {
		r := lipgloss.NewRenderer(w)
		styles = func(job int) lipgloss.Style {
			return r.NewStyle().Foreground(lipgloss.Color(palette[job%len(palette)]))
		}
	}

	labelWidth := len(label(len(pl.Machines) - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "makespan %d, %d machines, 1 cell = %d time unit(s)\n", makespan, len(pl.Machines), scale)
	for m, slots := range pl.Machines {
		fmt.Fprintf(&b, "%-*s |", labelWidth, label(m))
		writeRow(&b, Row(slots, cells, scale), styles)
		b.WriteString("|\n")
	}

	if opts.Legend {
		for m, slots := range pl.Machines {
			fmt.Fprintf(&b, "%-*s:", labelWidth, label(m))
			for _, sl := range slots {
				fmt.Fprintf(&b, " J%d/%d [%d,%d)", sl.Job, sl.Op.Index, sl.Start, sl.End())
			}
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Scale возвращает число единиц времени в одной ячейке, чтобы строка
// длины makespan уложилась в width ячеек.
func Scale(makespan, width int) int {
	if width <= 0 || makespan <= width {
		return 1
	}
	return (makespan + width - 1) / width
}

// Row возвращает номера работ по ячейкам строки станка (-1 — простой).
// Ячейка c показывает работу, занимающую станок в момент c*scale.
func Row(slots []jobshop.Slot, cells, scale int) []int {
	row := make([]int, cells)
	k := 0
	for c := range row {
		t := c * scale
		for k < len(slots) && slots[k].End() <= t {
			k++
		}
		row[c] = -1
		if k < len(slots) && slots[k].Start <= t {
			row[c] = slots[k].Job
		}
	}
	return row
}

func writeRow(b *strings.Builder, row []int, styles func(int) lipgloss.Style) {
	for i := 0; i < len(row); {
		j := i
		for j < len(row) && row[j] == row[i] {
			j++
		}
		run := strings.Repeat(string(glyph(row[i])), j-i)
		if styles != nil && row[i] >= 0 {
			run = styles(row[i]).Render(run)
		}
		b.WriteString(run)
		i = j
	}
}

// glyph — символ работы: 0-9, затем a-z, дальше '#'.
func glyph(job int) rune {
	switch {
	case job < 0:
		return idle
	case job < 36:
		return rune(strconv.FormatInt(int64(job), 36)[0])
	default:
		return '#'
	}
}

func label(m int) string { return "M" + strconv.Itoa(m) }
