package normalize

import (
	"sort"
	"strings"

	"github.com/thoas/go-funk"
)

type Gender string

const (
	Men   Gender = "men"
	Women Gender = "women"
)

// "women" contains "men", so it has to be tested first.
var genderRules = []Rule[Gender]{
	{Value: Women, Keywords: []string{"women", "woman"}},
	{Value: Men, Keywords: []string{"men", "man"}},
}

var divisionCodes = map[string]string{
	"D1":    "NCAA Division I",
	"D2":    "NCAA Division II",
	"D3":    "NCAA Division III",
	"NAIA":  "NAIA",
	"JUCO":  "NJCAA",
	"NJCAA": "NJCAA",
}

// GenderFromSport infers the program gender from a sport code. Ambiguous or
// missing codes default to men.
func GenderFromSport(sport *string) Gender {
	v := NullifyEmptyString(sport)
	if v == nil {
		return Men
	}
	if g, ok := Match(genderRules, *v); ok {
		return g
	}
	return Men
}

// DivisionName maps a sheet name to the canonical division name. Unknown
// sheet names are returned trimmed.
func DivisionName(sheet string) string {
	code := strings.TrimSpace(sheet)
	if name, ok := divisionCodes[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// IsRemoved reports whether a "removed" flag cell is set.
func IsRemoved(flag *string) bool {
	v := NullifyEmptyString(flag)
	return v != nil && strings.EqualFold(*v, "y")
}

// KnownDivisions returns the canonical division names, sorted.
func KnownDivisions() []string {
	names := funk.UniqString(funk.Values(divisionCodes).([]string))
	sort.Strings(names)
	return names
}
