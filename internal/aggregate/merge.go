package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const acquirorColumn = "acquiror_name"

// MergeOutcome joins the aggregation into the outcome workbook rows.
// The template is deduplicated by acquiror name keeping the first row,
// stale patent_* columns from previous runs are dropped, and the fresh
// stat and alias columns are appended. Stat cells for companies without
// patents are zero-filled; alias cells stay blank.
func MergeOutcome(main [][]string, s *Summary) ([]string, [][]string, error) {
	if len(main) == 0 {
		return nil, nil, eris.New("aggregate: outcome workbook is empty")
	}

	header := main[0]
	acquirorIdx := -1
	keepIdx := make([]int, 0, len(header))
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == acquirorColumn {
			acquirorIdx = i
		}
		if strings.HasPrefix(trimmed, "patent_") {
			continue
		}
		keepIdx = append(keepIdx, i)
	}
	if acquirorIdx == -1 {
		return nil, nil, eris.Errorf("aggregate: outcome workbook missing %q column", acquirorColumn)
	}

	outHeader := make([]string, 0, len(keepIdx)+2*len(s.Years)+s.MaxAliases())
	for _, i := range keepIdx {
		outHeader = append(outHeader, header[i])
	}
	for _, y := range s.Years {
		outHeader = append(outHeader, fmt.Sprintf("patent_%d", y))
	}
	for _, y := range s.Years {
		outHeader = append(outHeader, fmt.Sprintf("patent_inventor_%d", y))
	}
	aliasWidth := s.MaxAliases()
	for i := 0; i < aliasWidth; i++ {
		if i == 0 {
			outHeader = append(outHeader, "patent_name")
		} else {
			outHeader = append(outHeader, fmt.Sprintf("patent_name_%d", i))
		}
	}

	seen := make(map[string]struct{})
	var outRows [][]string
	for _, row := range main[1:] {
		acquiror := ""
		if acquirorIdx < len(row) {
			acquiror = row[acquirorIdx]
		}
		if _, dup := seen[acquiror]; dup {
			continue
		}
		seen[acquiror] = struct{}{}

		out := make([]string, 0, len(outHeader))
		for _, i := range keepIdx {
			if i < len(row) {
				out = append(out, row[i])
			} else {
				out = append(out, "")
			}
		}

		stats := s.Stats[acquiror]
		for _, y := range s.Years {
			out = append(out, strconv.Itoa(stats[y].Patents))
		}
		for _, y := range s.Years {
			out = append(out, strconv.Itoa(stats[y].Inventors))
		}

		aliases := s.Aliases[acquiror]
		for i := 0; i < aliasWidth; i++ {
			if i < len(aliases) {
				out = append(out, aliases[i])
			} else {
				out = append(out, "")
			}
		}
		outRows = append(outRows, out)
	}

	return outHeader, outRows, nil
}
