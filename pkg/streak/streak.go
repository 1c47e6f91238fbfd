// Package streak derives daily-activity streaks from a set of calendar dates.
//
// The calculation depends only on its arguments: the same date set and reference date always
// produce the same result, regardless of input order or wall-clock time.
package streak

import (
	"sort"

	"github.com/samber/lo"

	"github.com/eslsoft/vocengage/internal/entity"
)

// GraceDays is how long a streak survives without a new session.
const GraceDays = 1

// Result holds the streak anchored at the most recent date and the longest streak in history.
type Result struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Distinct collapses duplicate dates, e.g. several sessions completed on the same day.
func Distinct(days []entity.Day) []entity.Day {
	return lo.Uniq(days)
}

// Compute returns the current and longest run of consecutive dates in days as of asOf.
// days must already be distinct; use Distinct first when the input may contain duplicates.
func Compute(days []entity.Day, asOf entity.Day) Result {
	if len(days) == 0 {
		return Result{}
	}

	sorted := append([]entity.Day(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var (
		res       Result
		run       = 1
		anchored  = true
		anchorRun = 1
	)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1]-sorted[i] == 1 {
			run++
		} else {
			anchored = false
			run = 1
		}
		if anchored {
			anchorRun = run
		}
		res.Max = max(res.Max, run)
	}
	res.Max = max(res.Max, anchorRun)

	if asOf-sorted[0] <= GraceDays {
		res.Current = anchorRun
	}
	res.Max = max(res.Max, res.Current)
	return res
}

// FromDays is Distinct followed by Compute.
func FromDays(days []entity.Day, asOf entity.Day) Result {
	return Compute(Distinct(days), asOf)
}
