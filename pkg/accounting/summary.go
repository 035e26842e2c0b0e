package accounting

import (
	"strconv"
	"strings"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

// TimestampLayout is the human readable purchase timestamp stored on
// history records, e.g. "Jan 03, 07:00 PM". The day prefix is what the
// daily summary filters on.
const TimestampLayout = "Jan 02, 03:04 PM"

const dayLayout = "Jan 02"

// Summary totals the purchases of a single day.
type Summary struct {
	Day         string
	Records     int
	TotalAmount string
}

// SameDay reports whether a stored purchase timestamp falls on the given day.
func SameDay(timestamp string, day time.Time) bool {
	return strings.HasPrefix(timestamp, day.Format(dayLayout))
}

// Summarize filters the history records of the given day and sums their
// amounts. Records with unparseable amounts count but contribute zero.
func Summarize(records map[string]model.HistoryRecord, day time.Time) Summary {
	out := Summary{Day: day.Format(dayLayout)}

	var total float64
	for _, r := range records {
		if !SameDay(r.Timestamp, day) {
			continue
		}
		out.Records++
		total += parseAmount(r.Amount)
	}
	out.TotalAmount = FormatAmount(total)

	return out
}

func parseAmount(amount string) float64 {
	v, err := strconv.ParseFloat(strings.TrimPrefix(amount, "P "), 64)
	if err != nil {
		return 0
	}
	return v
}
