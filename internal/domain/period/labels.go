package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// Labels holds the human readable bucket names for one locale.
type Labels struct {
	Locale     monday.Locale
	Recent     string
	LastMonth  string
	YearFormat string
}

var knownLabels = map[monday.Locale]Labels{
	monday.LocaleEnUS: {
		Locale:     monday.LocaleEnUS,
		Recent:     "Last week",
		LastMonth:  "Last month",
		YearFormat: "Year %d",
	},
	monday.LocaleUkUA: {
		Locale:     monday.LocaleUkUA,
		Recent:     "Останній тиждень",
		LastMonth:  "Останній місяць",
		YearFormat: "Рік %d",
	},
}

// LabelsFor returns the labels for a locale such as "uk_UA". Unknown locales
// fall back to en_US.
func LabelsFor(locale string) Labels {
	key := monday.Locale(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
	if labels, ok := knownLabels[key]; ok {
		return labels
	}
	return knownLabels[monday.LocaleEnUS]
}

// MonthName formats a calendar month as "Month Year" in the label locale.
func (l Labels) MonthName(year int, month time.Month) string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return monday.Format(first, "January 2006", l.Locale)
}

// YearName formats a calendar year label.
func (l Labels) YearName(year int) string {
	return fmt.Sprintf(l.YearFormat, year)
}
