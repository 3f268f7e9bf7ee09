package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// US$ must be stripped before $.
	currencySymbols = []string{"US$", "$", "€", "£"}

	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02T15:04:05Z07:00",
		"1/2/2006",
		"01/02/2006",
		"1/2/06",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2006",
		"January 2006",
		"2006",
	}

	excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
)

// Range is a percentile band such as an SAT 25th-75th range.
type Range struct {
	Min *int
	Max *int
}

// NullifyEmptyString maps nil, blank and "-" to nil and trims everything else.
func NullifyEmptyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "-" {
		return nil
	}
	return &v
}

// PercentageToDecimal parses "45%", "45" or "0.45" into 0.45.
// Values <= 1 are taken to be fractions already.
func PercentageToDecimal(s *string) *float64 {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(*v, "%")))
	if err != nil {
		return nil
	}
	if d.GreaterThan(one) {
		d = d.Div(hundred)
	}
	f, _ := d.Float64()
	return &f
}

// PercentileRange splits "600-700" into its bounds. Each bound is nil when it
// cannot be parsed.
func PercentileRange(s *string) Range {
	v := NullifyEmptyString(s)
	if v == nil {
		return Range{}
	}
	parts := strings.SplitN(*v, "-", 2)
	r := Range{Min: ToInteger(&parts[0])}
	if len(parts) == 2 {
		r.Max = ToInteger(&parts[1])
	}
	return r
}

// CurrencyToInteger parses amounts like "$32,564", "US$32.564" or "€1.200".
func CurrencyToInteger(s *string) *int {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	amount := *v
	for _, sym := range currencySymbols {
		amount = strings.TrimSpace(strings.TrimPrefix(amount, sym))
		amount = strings.TrimSpace(strings.TrimSuffix(amount, sym))
	}
	return ToInteger(&amount)
}

// ToInteger parses an integer written with either thousands separator
// convention. A period with no comma whose last segment has exactly three
// digits is a thousands separator; otherwise it is a decimal point and the
// fraction is truncated.
func ToInteger(s *string) *int {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	n := strings.ReplaceAll(*v, " ", "")
	if strings.Contains(n, ".") && !strings.Contains(n, ",") {
		segments := strings.Split(n, ".")
		if last := segments[len(segments)-1]; len(last) == 3 && isDigits(last) {
			n = strings.ReplaceAll(n, ".", "")
		}
	}
	n = strings.ReplaceAll(n, ",", "")

	d, err := decimal.NewFromString(n)
	if err != nil {
		return nil
	}
	i := int(d.IntPart())
	return &i
}

// ToFloat parses a plain decimal number such as a GPA.
func ToFloat(s *string) *float64 {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(*v, ",", ""))
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// ParseDate understands the date layouts found in staff sheets and Excel
// serial day numbers.
func ParseDate(s *string) *time.Time {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *v); err == nil {
			return &t
		}
	}
	if isDigits(*v) && len(*v) == 5 {
		if days := ToInteger(v); days != nil {
			t := excelEpoch.AddDate(0, 0, *days)
			return &t
		}
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s *string) *string {
	v := NullifyEmptyString(s)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}

// FoldName lower-cases a person name, collapses whitespace and strips
// diacritics so "José  Núñez" and "jose nunez" compare equal.
func FoldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
