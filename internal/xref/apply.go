package xref

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/model"
)

// Identifier columns filled into the outcome workbook. All stay strings
// end to end so leading zeros survive the round trip.
var idColumns = []string{"gvkey", "cusip", "cik", "compustat_name"}

// BuildIDIndex indexes the Compustat roster by original company name,
// keeping the first row per name.
func BuildIDIndex(rows []model.CompustatRow) map[string]model.CompustatRow {
	index := make(map[string]model.CompustatRow, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Conm) == "" {
			continue
		}
		if _, seen := index[r.Conm]; seen {
			continue
		}
		index[r.Conm] = r
	}
	return index
}

// Apply fills the identifier columns of the outcome workbook from the
// reviewed links. Missing identifier columns are appended; cells that
// already hold a value are left alone so manual corrections survive
// reruns. Rows without a reviewed link pass through unchanged.
func Apply(main [][]string, verified []model.VerifiedMatch, ids map[string]model.CompustatRow) ([]string, [][]string, error) {
	if len(main) == 0 {
		return nil, nil, eris.New("xref: outcome workbook is empty")
	}

	links := make(map[string]model.VerifiedMatch, len(verified))
	for _, v := range verified {
		if _, seen := links[v.AcquirorOriginal]; !seen {
			links[v.AcquirorOriginal] = v
		}
	}

	header := append([]string(nil), main[0]...)
	acquirorIdx := -1
	colIdx := make(map[string]int, len(idColumns))
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "acquiror_name" {
			acquirorIdx = i
		}
		for _, col := range idColumns {
			if trimmed == col {
				colIdx[col] = i
			}
		}
	}
	if acquirorIdx == -1 {
		return nil, nil, eris.New("xref: outcome workbook missing acquiror_name column")
	}
	for _, col := range idColumns {
		if _, ok := colIdx[col]; !ok {
			colIdx[col] = len(header)
			header = append(header, col)
		}
	}

	filled := 0
	outRows := make([][]string, 0, len(main)-1)
	for _, row := range main[1:] {
		out := make([]string, len(header))
		copy(out, row)

		link, ok := links[out[acquirorIdx]]
		if ok {
			comp := ids[link.CompustatOriginal]
			filled += fillBlank(out, colIdx["gvkey"], comp.Gvkey)
			filled += fillBlank(out, colIdx["cusip"], comp.Cusip)
			filled += fillBlank(out, colIdx["cik"], comp.Cik)
			fillBlank(out, colIdx["compustat_name"], link.CompustatOriginal)
		}
		outRows = append(outRows, out)
	}

	zap.L().Info("identifiers applied",
		zap.Int("reviewed_links", len(links)),
		zap.Int("rows", len(outRows)),
		zap.Int("cells_filled", filled))
	return header, outRows, nil
}

func fillBlank(row []string, idx int, value string) int {
	if strings.TrimSpace(row[idx]) != "" || value == "" {
		return 0
	}
	row[idx] = value
	return 1
}
