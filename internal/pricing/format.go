package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idr = message.NewPrinter(language.Indonesian)

// Format renders an amount the way the screens show it, e.g. "Rp 10.000.000".
func Format(amount int64) string {
	return idr.Sprintf("Rp %d", amount)
}

func FormatRange(min, max int64) string {
	if max <= min {
		return Format(min)
	}
	return Format(min) + " - " + Format(max)
}
