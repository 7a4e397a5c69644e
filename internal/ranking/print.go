package ranking

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/janpfeifer/mctslog/internal/parameters"
	"github.com/janpfeifer/mctslog/internal/ui/cli"
)

// Printer prints the top entries of each bucket: as a table if the UI has colors, or one tuple per line otherwise.
type Printer struct {
	UI *cli.UI

	// Top is the maximum number of entries printed per bucket.
	Top int

	// Params are hyperparameter keys, read from each run's header, printed along with the entries.
	Params []string
}

// Print the buckets in selection order.
func (p *Printer) Print(buckets *Buckets) {
	for _, bucket := range buckets.All() {
		p.PrintBucket(bucket)
	}
}

// PrintBucket prints the title of the bucket and its top entries. The entries must already be ranked.
func (p *Printer) PrintBucket(bucket *Bucket) {
	p.UI.PrintTitle(bucket.Title())
	top := Top(bucket.Entries, p.Top)
	if len(top) == 0 {
		p.UI.Println(p.UI.Render(cli.DimStyle, "(no run reached this snapshot)"))
		return
	}
	if !p.UI.Color() {
		for _, entry := range top {
			line := entry.String()
			if len(p.Params) > 0 {
				values := p.paramValues(entry)
				for ii, key := range p.Params {
					line += " " + key + "=" + values[ii]
				}
			}
			p.UI.Println(line)
		}
		return
	}

	headers := append([]string{"#", "File", "Rollout depth", "Extracted %"}, p.Params...)
	rows := make([][]string, 0, len(top))
	for rank, entry := range top {
		row := []string{
			strconv.Itoa(rank + 1),
			entry.File,
			strconv.Itoa(entry.BestRolloutDepth),
			strconv.FormatFloat(entry.BestRolloutExtractedPercentage, 'g', -1, 64),
		}
		rows = append(rows, append(row, p.paramValues(entry)...))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.DimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.HeaderStyle
			}
			return cli.CellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	p.UI.Println(t.Render())
}

// paramValues returns the values of p.Params in the entry's header: "-" if missing, "?" if not a number.
func (p *Printer) paramValues(entry Entry) []string {
	if len(p.Params) == 0 {
		return nil
	}
	params := parameters.NewFromConfigString(entry.Header)
	values := make([]string, len(p.Params))
	for ii, key := range p.Params {
		value, err := parameters.GetParamOr(params, strings.TrimSpace(key), math.NaN())
		switch {
		case err != nil:
			values[ii] = "?"
		case math.IsNaN(value):
			values[ii] = "-"
		default:
			values[ii] = strconv.FormatFloat(value, 'g', -1, 64)
		}
	}
	return values
}
