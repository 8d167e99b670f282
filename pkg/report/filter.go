package report

import (
	"regexp"
	"strings"
)

// Reverse geocoding rural coordinates often returns the nearest named
// feature instead of a settlement: highways, route designations, farm
// roads. These patterns reject the common shapes of such names.
var nonCityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\s*$`),
	regexp.MustCompile(`(?i)\b(highway|expressway|freeway|turnpike|interstate)\b`),
	regexp.MustCompile(`(?i)\b(road|trail|parkway|byway)$`),
	regexp.MustCompile(`(?i)^(us|sr|fm|cr|i)[ -]\d+`),
	regexp.MustCompile(`(?i)^[a-z]{2} \d+(;|$)`), // state route designations: "NM 68", "US 412;AR 21"
	regexp.MustCompile(`(?i)\bfrontage\b`),
}

// LikelyCity reports whether a geocoder-returned name looks like a
// settlement rather than a road or route artifact. The offline
// gazetteer is curated and bypasses this check.
func LikelyCity(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return false
	}
	for _, p := range nonCityPatterns {
		if p.MatchString(name) {
			return false
		}
	}
	return true
}
