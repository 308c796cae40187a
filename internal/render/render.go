/*
Package render holds presentation helpers shared by the web page, the report email
and the CLI: weather flavour text and the allowlist sanitizer for generated markup.
*/
package render

import (
	"fmt"

	"github.com/shanehull/digmap/internal/types"
)

// TimeLayout formats the "updated at" stamp of a weather report.
const TimeLayout = "02.01.2006 15:04"

var flavors = map[types.Band]string{
	types.Frigid:   "Лютый холод! Даже черти в аду кутаются!",
	types.Cold:     "Морозец, но для настоящего пиратского рома в самый раз!",
	types.Cool:     "Прохладно, как в трюме после шторма",
	types.Pleasant: "Отличная погода для поиска сокровищ!",
	types.Warm:     "Жара, но для кладоискателя это не помеха!",
	types.Hot:      "Адская жара! Где мой ром?!",
}

// Flavor returns the pirate-style description of a temperature band.
func Flavor(b types.Band) string {
	return flavors[b]
}

// Weather is the display form of a weather report.
type Weather struct {
	Temperature string
	Description string
	UpdatedAt   string
}

// WeatherView formats r for display. A nil report yields nil.
func WeatherView(r *types.WeatherReport) *Weather {
	if r == nil {
		return nil
	}
	return &Weather{
		Temperature: fmt.Sprintf("%.1f", r.TemperatureCelsius),
		Description: Flavor(r.Band),
		UpdatedAt:   r.ObservedAt.Format(TimeLayout),
	}
}
