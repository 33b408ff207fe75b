package engage

import (
	"regexp"
	"strconv"
	"strings"
)

var amountRegex = regexp.MustCompile(`[\d,\.]+`)

// ParseAmountValue extracts a sortable numeric value from a textual
// funding amount such as "Up to $50,000" or "$10,000 - $150,000". Ranges
// yield the upper bound; unparseable text yields 0.
func ParseAmountValue(text string) float64 {
	matches := amountRegex.FindAllString(text, -1)

	var best float64
	for _, m := range matches {
		// Comma as thousands separator first, then European dot format.
		clean := strings.ReplaceAll(m, ",", "")
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			clean = strings.ReplaceAll(m, ".", "")
			val, err = strconv.ParseFloat(clean, 64)
		}
		if err == nil && val > best {
			best = val
		}
	}

	return best
}
