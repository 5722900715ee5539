package utils

import "strings"

// SplitCSV splits a comma separated list, trimming items and dropping blanks.
func SplitCSV(s string) []string {
	items := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return items
}
