package utils

import (
	"math"
	"strconv"
	"strings"
)

// SplitsFromURLParam parses a dataset-splits query parameter of the
// form "train:0.8,test:0.2" into a tag → proportion map. Any parse
// failure, a proportion outside [0,1], or a sum deviating from 1 by
// more than 0.001 yields an empty map rather than an error: a bad URL
// just means "no preset splits".
func SplitsFromURLParam(param string) map[string]float64 {
	splits := make(map[string]float64)
	if strings.TrimSpace(param) == "" {
		return splits
	}

	sum := 0.0
	for _, entry := range strings.Split(param, ",") {
		tag, value, found := strings.Cut(entry, ":")
		if !found {
			return map[string]float64{}
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return map[string]float64{}
		}
		proportion, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || proportion < 0 || proportion > 1 {
			return map[string]float64{}
		}
		splits[tag] = proportion
		sum += proportion
	}

	if math.Abs(sum-1) > 0.001 {
		return map[string]float64{}
	}
	return splits
}
