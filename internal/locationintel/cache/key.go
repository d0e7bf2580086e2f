package cache

import (
	"math"
	"strconv"
	"strings"
)

const (
	keyPrefix    = "location-intel"
	anyDimension = "all"
)

// LocationKey builds the cache key for a location lookup. Coordinates are
// truncated to five decimals (about one metre); empty discriminators become
// "all".
func LocationKey(lat, lng float64, propertyType, businessType string) string {
	return strings.Join([]string{
		keyPrefix,
		formatCoordinate(lat),
		formatCoordinate(lng),
		dimension(propertyType),
		dimension(businessType),
	}, ":")
}

// formatCoordinate snaps v to nine decimals before truncating, so float noise
// such as 12.971589999999999 keeps its last digit.
func formatCoordinate(v float64) string {
	nano := math.Round(v * 1e9)
	truncated := math.Trunc(nano/1e4) / 1e5
	s := strconv.FormatFloat(truncated, 'f', 5, 64)
	if s == "-0.00000" {
		return "0.00000"
	}
	return s
}

func dimension(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return anyDimension
	}
	return v
}
