package collection

import (
	"math"
	"time"
)

// SeasonOneEpoch is the start of Mythic+ season one (Legion launch).
var SeasonOneEpoch = time.Date(2016, time.August, 30, 0, 0, 0, 0, time.UTC)

// SeasonCadenceMonths is the assumed length of a Mythic+ season.
const SeasonCadenceMonths = 6

// EstimateSeasonCount approximates how many season ids exist at now. It
// counts the calendar months of the elapsed span (laid out from the Unix
// epoch, so a partial month counts as one), divides by the cadence and
// rounds half up. Ids past the last real season are skipped by the
// caller.
func EstimateSeasonCount(now, epoch time.Time, cadenceMonths int) int {
	if cadenceMonths <= 0 {
		cadenceMonths = SeasonCadenceMonths
	}
	if !now.After(epoch) {
		return 0
	}

	span := time.Unix(0, 0).UTC().Add(now.Sub(epoch))
	months := (span.Year()-1970)*12 + int(span.Month())
	return int(math.Round(float64(months) / float64(cadenceMonths)))
}
