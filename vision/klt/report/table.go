package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/klt/vision/klt"
)

// Table renders one row per recorded frame with the count of every fault and the residual
// statistics.
func (sp *StatsPlotter) Table() string {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	t := table.NewWriter()
	header := table.Row{"Frame", "Total"}
	for _, f := range klt.Faults {
		header = append(header, f.String())
	}
	header = append(header, "Mean", "Median", "P90")
	t.AppendHeader(header)
	for i, frame := range sp.frames {
		s := sp.stats[i]
		row := table.Row{frame, s.Total}
		for _, f := range klt.Faults {
			row = append(row, s.Counts[f])
		}
		row = append(row,
			fmt.Sprintf("%.2f", s.MeanError),
			fmt.Sprintf("%.2f", s.MedianError),
			fmt.Sprintf("%.2f", s.P90Error))
		t.AppendRow(row)
	}
	return t.Render()
}
