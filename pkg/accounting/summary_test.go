package accounting

import (
	"testing"
	"time"

	"github.com/Aslhee/MobileCafeServer/pkg/model"
)

func TestSummarizeFiltersByDay(t *testing.T) {
	day := time.Date(2020, time.January, 3, 12, 0, 0, 0, time.UTC)

	records := map[string]model.HistoryRecord{
		"000000000001": {Timestamp: "Jan 03, 07:00 PM", Amount: "P 20.00"},
		"000000000002": {Timestamp: "Jan 03, 08:15 AM", Amount: "P 5.00"},
		"000000000003": {Timestamp: "Jan 04, 07:00 PM", Amount: "P 40.00"},
		"000000000004": {Timestamp: "Feb 03, 07:00 PM", Amount: "P 10.00"},
	}

	s := Summarize(records, day)

	if s.Day != "Jan 03" {
		t.Errorf("day = %q, want %q", s.Day, "Jan 03")
	}
	if s.Records != 2 {
		t.Errorf("records = %d, want 2", s.Records)
	}
	if s.TotalAmount != "P 25.00" {
		t.Errorf("totalAmount = %q, want %q", s.TotalAmount, "P 25.00")
	}
}

func TestSummarizeEmptyDay(t *testing.T) {
	day := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

	s := Summarize(map[string]model.HistoryRecord{}, day)

	if s.Records != 0 {
		t.Errorf("records = %d, want 0", s.Records)
	}
	if s.TotalAmount != "P 0.00" {
		t.Errorf("totalAmount = %q, want %q", s.TotalAmount, "P 0.00")
	}
}

func TestSummarizeUnparseableAmount(t *testing.T) {
	day := time.Date(2020, time.January, 3, 0, 0, 0, 0, time.UTC)

	records := map[string]model.HistoryRecord{
		"000000000001": {Timestamp: "Jan 03, 07:00 PM", Amount: "free"},
		"000000000002": {Timestamp: "Jan 03, 07:30 PM", Amount: "P 5.00"},
	}

	s := Summarize(records, day)

	if s.Records != 2 {
		t.Errorf("records = %d, want 2", s.Records)
	}
	if s.TotalAmount != "P 5.00" {
		t.Errorf("totalAmount = %q, want %q", s.TotalAmount, "P 5.00")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Date(2020, time.January, 3, 19, 0, 0, 0, time.UTC)

	ts := now.Format(TimestampLayout)
	if ts != "Jan 03, 07:00 PM" {
		t.Errorf("formatted timestamp = %q, want %q", ts, "Jan 03, 07:00 PM")
	}
	if !SameDay(ts, now) {
		t.Error("SameDay() = false for the formatting day")
	}
	if SameDay(ts, now.AddDate(0, 0, 1)) {
		t.Error("SameDay() = true for the next day")
	}
}
