package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var zipRe = regexp.MustCompile(`^\d{5}$`)

// LocationID produces the stable key the environmental store is indexed by.
// ZIP codes take precedence; otherwise coordinates round to 4 decimal places
// and join with "_". Returns "unknown" when neither is usable.
func LocationID(lat, lon *float64, zipCode string) string {
	if zipCode != "" && zipRe.MatchString(zipCode) {
		return "zip_" + zipCode
	}
	if lat != nil && lon != nil {
		return formatCoord(*lat) + "_" + formatCoord(*lon)
	}
	return "unknown"
}

// ProfileLocationID resolves the environmental lookup key for a profile,
// falling back to the given default when the profile carries no location.
func ProfileLocationID(p Profile, fallback string) string {
	id := LocationID(p.Latitude, p.Longitude, p.ZipCode)
	if id == "unknown" {
		return fallback
	}
	return id
}

// ParseLatLon parses a raw "lat,lon" string into its normalized location key.
func ParseLatLon(s string) (string, error) {
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 2 {
		return "", fmt.Errorf("parse location %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", fmt.Errorf("parse latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", fmt.Errorf("parse longitude %q: %w", parts[1], err)
	}
	return LocationID(&lat, &lon, ""), nil
}

// formatCoord renders a coordinate rounded to 4 decimal places the way the
// ingestion side renders round() output: trailing zeros trimmed, but whole
// numbers keep one decimal ("37.0", not "37"), so keys match ingested rows.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
