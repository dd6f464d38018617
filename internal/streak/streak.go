// Package streak implements calendar-based publish streak rules.
//
// The streak counts consecutive calendar days with at least one published
// article, evaluated in the operator's timezone:
//   - no previous publish        -> streak starts at 1
//   - last publish was today     -> streak unchanged (already counted)
//   - last publish was yesterday -> streak continues (+1)
//   - anything older             -> streak resets to 1
package streak

import "time"

// Next returns the streak value after a new article lands on today.
// lastPublish is nil when nothing has ever been published. Both dates must
// be calendar dates (midnight-normalized in the same location).
func Next(current int, lastPublish *time.Time, today time.Time) int {
	if lastPublish == nil {
		return 1
	}

	days := daysBetween(*lastPublish, today)
	switch {
	case days == 0:
		if current > 0 {
			return current
		}
		return 1
	case days == 1:
		return current + 1
	default:
		return 1
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
