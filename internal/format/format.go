// Package format renders numbers for human readers.
package format

import (
	"fmt"
	"strconv"
)

const (
	Thousand = 1000
	Million  = Thousand * 1000
	Billion  = Million * 1000
)

// HumanNumber formats n with a k, M or B suffix and two decimals.
// Values below a thousand are printed as-is.
func HumanNumber(n float64) string {
	switch {
	case n >= Billion:
		return fmt.Sprintf("%.2f B", n/Billion)
	case n >= Million:
		return fmt.Sprintf("%.2f M", n/Million)
	case n >= Thousand:
		return fmt.Sprintf("%.2f k", n/Thousand)
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// Cell formats a matrix value the way feature maps are displayed.
func Cell(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
