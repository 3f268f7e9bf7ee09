package importer

import (
	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
)

// FilterRows drops rows flagged as removed, rows without any of email,
// position, first and last name, and rows without a school.
func FilterRows(rows []spreadsheet.CoachRow) []spreadsheet.CoachRow {
	kept := make([]spreadsheet.CoachRow, 0, len(rows))
	for _, r := range rows {
		if normalize.IsRemoved(r.Removed) {
			continue
		}
		if isBlank(r.Email) && isBlank(r.Position) && isBlank(r.FirstName) && isBlank(r.LastName) {
			continue
		}
		if isBlank(r.School) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Deduplicate keeps the last row of every unique ID. Winners are returned in
// the order of their position in rows. Rows without a unique ID are left out
// and counted in dropped.
func Deduplicate(rows []spreadsheet.CoachRow) (unique []spreadsheet.CoachRow, dropped int) {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		key := uniqueKey(r)
		if key == "" {
			dropped++
			continue
		}
		last[key] = i
	}

	unique = make([]spreadsheet.CoachRow, 0, len(last))
	for i, r := range rows {
		key := uniqueKey(r)
		if key != "" && last[key] == i {
			unique = append(unique, r)
		}
	}
	return unique, dropped
}

func uniqueKey(r spreadsheet.CoachRow) string {
	if v := normalize.NullifyEmptyString(r.UniqueID); v != nil {
		return *v
	}
	return ""
}

func isBlank(s *string) bool {
	return normalize.NullifyEmptyString(s) == nil
}
