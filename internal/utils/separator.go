package utils

import "strings"

// SeparatorWidth is the width of every rule line in the report.
const SeparatorWidth = 80

// Rule returns symbol repeated to the report separator width.
func Rule(symbol string) string {
	return strings.Repeat(symbol, SeparatorWidth)
}
