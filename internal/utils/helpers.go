package utils

import (
	"math"
	"strings"
)

// RoundFloat rounds value half away from zero to the given number of decimal places.
func RoundFloat(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

// CleanStrings trims every entry and drops the empty ones, keeping order.
func CleanStrings(slice []string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// RatingStatsCacheKey identifies the cached stats of the ratings addressed to
// userID, where userType is the role of the rated user.
func RatingStatsCacheKey(userID, userType string) string {
	return CacheRatingStatsPrefix + userType + ":" + userID
}
