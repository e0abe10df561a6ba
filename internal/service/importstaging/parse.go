package importstaging

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// parsedRow is one data row extracted from the uploaded workbook, before
// fuzzy matching or conflict detection.
type parsedRow struct {
	rowNumber      int
	personName     string
	rotationName   string
	assignmentDate time.Time
	slot           string
}

// dateLayouts are the formats accepted for a string-valued date cell
// (spec.md §4.5 step 2: "Dates may be native date types or ISO strings;
// strings are trimmed"). excelize.GetRows returns already-formatted cell
// strings, so a native Excel date cell and an ISO string both arrive here
// as text; both paths are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
}

// personNameAliases/rotationNameAliases/dateAliases/slotAliases are the
// accepted column-name spellings (spec.md §4.5 step 2 names only
// person_name/assignment_date as required; the original source also
// accepts a handful of synonyms for friendlier spreadsheets).
var (
	personNameAliases = map[string]bool{"person_name": true, "name": true, "provider": true, "resident": true}
	dateAliases       = map[string]bool{"assignment_date": true, "date": true}
	rotationAliases   = map[string]bool{"rotation_name": true, "rotation": true, "activity": true}
	slotAliases       = map[string]bool{"slot": true, "time": true, "session": true}
)

// normalizeHeader lowercases and replaces spaces with underscores (spec.md
// §4.5 step 2: "Header normalization: lowercase, spaces -> _").
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// parseWorkbook opens the uploaded bytes as an Excel workbook, validates
// the required headers, and converts every non-empty data row into a
// parsedRow. Returns parse-level errors (missing sheet, missing headers) and
// advisory warnings (bad date formats) separately, since a parse error
// aborts staging entirely while a warning just gets attached to its row.
func parseWorkbook(data []byte, sheetName string) ([]parsedRow, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := sheetName
	if sheet == "" {
		sheet = f.GetSheetList()[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(grid[0]))
	normalized := make(map[string]int, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = h
		normalized[normalizeHeader(h)] = i
	}

	var missing []string
	for _, required := range requiredHeaders {
		if _, ok := normalized[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []parsedRow
	var warnings []string

	for rowIdx := 1; rowIdx < len(grid); rowIdx++ {
		raw := grid[rowIdx]
		row := parsedRow{rowNumber: rowIdx + 1} // 1-indexed, header is row 1

		empty := true
		for col, header := range headers {
			if col >= len(raw) {
				break
			}
			value := strings.TrimSpace(raw[col])
			if value == "" {
				continue
			}
			empty = false

			switch {
			case personNameAliases[normalizeHeader(header)]:
				row.personName = value
			case dateAliases[normalizeHeader(header)]:
				parsed, ok := parseDate(value)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("row %d: invalid date format %q", row.rowNumber, value))
					continue
				}
				row.assignmentDate = parsed
			case rotationAliases[normalizeHeader(header)]:
				row.rotationName = value
			case slotAliases[normalizeHeader(header)]:
				row.slot = strings.ToUpper(value)
			}
		}

		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return rows, warnings, nil
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
