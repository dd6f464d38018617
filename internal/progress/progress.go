// Package progress renders text progress bars and money formatting for
// notifications and the dashboard.
package progress

import (
	"fmt"
	"strings"
)

const defaultBarLength = 10

// Bar renders a text progress bar like "██████░░░░ 62%". The fill is capped
// at 100%.
func Bar(current, target int) string {
	return BarN(current, target, defaultBarLength)
}

func BarN(current, target, length int) string {
	if length <= 0 {
		length = defaultBarLength
	}
	if target <= 0 {
		return strings.Repeat("░", length) + " 0%"
	}

	ratio := float64(current) / float64(target)
	if ratio > 1.0 {
		ratio = 1.0
	}
	if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(length))
	pct := int(ratio * 100)

	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled) + fmt.Sprintf(" %d%%", pct)
}

// FormatIncrement formats an earning increment, e.g. "+ $4.15".
func FormatIncrement(value float64) string {
	return "+ $" + formatMoney(value)
}

// FormatTotal formats a running total, e.g. "$1,037.50".
func FormatTotal(total float64) string {
	return "$" + formatMoney(total)
}

// Remaining returns how many articles are left to reach the target, never
// negative.
func Remaining(current, target int) int {
	if r := target - current; r > 0 {
		return r
	}
	return 0
}

// Percent returns the progress percentage, capped at 100.
func Percent(current, target int) int {
	if target <= 0 {
		return 0
	}
	pct := current * 100 / target
	if pct > 100 {
		return 100
	}
	return pct
}

// formatMoney renders a non-negative amount with two decimals and thousands
// separators.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
