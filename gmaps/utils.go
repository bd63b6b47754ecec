package gmaps

import (
	"regexp"
)

var dataIDRe = regexp.MustCompile(`1s(0x[a-f0-9]+:0x[a-f0-9]+)`)

// ExtractDataIDFromURL extracts the DataID (0x[hex1]:0x[hex2]) from Google Maps URLs.
//
// Pattern: /maps/place/Name/data=!4m7!3m6!1s0x[hex1]:0x[hex2]!...
// Returns: "0x[hex1]:0x[hex2]" or empty string if not found
//
// Example:
//
//	Input:  "https://www.google.com/maps/place/Blue+Bottle+Coffee/data=!4m7!3m6!1s0x80858098babc2d4b:0xbeedd659cc698c92!8m2!3d37.7763342!4d-122.4232375"
//	Output: "0x80858098babc2d4b:0xbeedd659cc698c92"
func ExtractDataIDFromURL(url string) string {
	matches := dataIDRe.FindStringSubmatch(url)
	if len(matches) >= 2 {
		return matches[1]
	}

	return ""
}
