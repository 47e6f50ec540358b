package board

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"transitboard/internal/domain"
	"transitboard/internal/metrics"
)

// Source is the read side of the stop graph used for rendering.
type Source interface {
	ApproachingBuses(stopID int) []domain.ApproachingBus
	StopLocation(stopID int) string
	Connections() []domain.Adjacency
}

var boardHeaders = []string{"LINE", "LOCATION", "ARRIVING", "NEXT (EST.)"}

// Presenter writes text views of the graph. It never mutates the source.
type Presenter struct {
	src     Source
	metrics *metrics.Metrics
}

func NewPresenter(src Source, m *metrics.Metrics) *Presenter {
	return &Presenter{src: src, metrics: m}
}

// RenderStopBoard writes the approaching-bus table for a stop. The NEXT
// column is derived (current + 1), not a second prediction.
func (p *Presenter) RenderStopBoard(w io.Writer, stopID int) error {
	p.count("board")

	buses := p.src.ApproachingBuses(stopID)
	if len(buses) == 0 {
		_, err := fmt.Fprintf(w, "No buses approaching stop %d.\n", stopID)
		return err
	}

	location := p.src.StopLocation(stopID)
	rows := make([][]string, 0, len(buses))
	for _, b := range buses {
		rows = append(rows, []string{
			strconv.Itoa(b.Line),
			location,
			formatMinutes(b.Minutes),
			formatMinutes(b.NextMinutes()),
		})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nStop %d:\n", stopID)
	formatTable(&sb, boardHeaders, rows)
	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderConnections writes one line per stop that has neighbors.
func (p *Presenter) RenderConnections(w io.Writer) error {
	p.count("connections")

	var sb strings.Builder
	sb.WriteString("\nConnections between stops:\n")
	for _, adj := range p.src.Connections() {
		fmt.Fprintf(&sb, "Stop %d is connected to:", adj.StopID)
		for _, n := range adj.Neighbors {
			if n.Name == "" {
				fmt.Fprintf(&sb, " %d", n.ID)
				continue
			}
			fmt.Fprintf(&sb, " %d (%s)", n.ID, n.Name)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (p *Presenter) count(view string) {
	if p.metrics != nil {
		p.metrics.RendersTotal.WithLabelValues(view).Inc()
	}
}

func formatMinutes(m int) string {
	return strconv.Itoa(m) + " min"
}

// formatTable pads every column to its widest cell.
func formatTable(sb *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = cell + strings.Repeat(" ", max(w-len([]rune(cell)), 0))
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteByte('\n')
	}

	writeRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	writeRow(seps)
	for _, row := range rows {
		writeRow(row)
	}
}
