package models

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DateFormat holds the layouts used for history titles and timestamps.
type DateFormat struct {
	DateLayout string
	TimeLayout string
}

var (
	isoFormat = DateFormat{DateLayout: "2006-01-02", TimeLayout: "15:04:05"}
	usFormat  = DateFormat{DateLayout: "1/2/2006", TimeLayout: "3:04:05 PM"}
	ukFormat  = DateFormat{DateLayout: "02/01/2006", TimeLayout: "15:04:05"}
	dotFormat = DateFormat{DateLayout: "2.1.2006", TimeLayout: "15:04:05"}
)

// regions writing dates day-first with dots
var dotRegions = map[string]bool{
	"DE": true, "AT": true, "CH": true, "RU": true, "PL": true,
	"CZ": true, "FI": true, "NO": true, "UA": true, "TR": true,
}

// regions writing dates day-first with slashes
var slashRegions = map[string]bool{
	"GB": true, "IE": true, "IN": true, "AU": true, "NZ": true,
	"FR": true, "ES": true, "IT": true, "BR": true, "PT": true,
}

// DefaultDateFormat matches en-US
func DefaultDateFormat() DateFormat {
	return usFormat
}

// ResolveDateFormat picks date and time layouts for a BCP 47 locale tag.
// An empty tag resolves to en-US.
func ResolveDateFormat(locale string) (DateFormat, error) {
	if locale == "" {
		return usFormat, nil
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return DateFormat{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	// Region() infers a region from the language when the tag has none,
	// so "en" resolves to US and "de" to DE.
	region, _ := tag.Region()
	code := region.String()

	switch {
	case code == "US":
		return usFormat, nil
	case dotRegions[code]:
		return dotFormat, nil
	case slashRegions[code]:
		return ukFormat, nil
	}

	return isoFormat, nil
}

func (f DateFormat) Date(t time.Time) string {
	return t.Format(f.DateLayout)
}

func (f DateFormat) Time(t time.Time) string {
	return t.Format(f.TimeLayout)
}
