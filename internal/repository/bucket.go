package repository

import (
	"fmt"
	"time"
)

// BucketLabel computes the bucket label for a record's ISO-8601 start time.
// Daily buckets (and the 1440-minute interval alias) use YYYY-MM-DD; the
// 60-minute interval truncates to the hour; 15 and 30 minute intervals floor
// minutes-since-hour to the interval boundary, labelled YYYY-MM-DD HH:MM.
// This is the Go twin of the SQL bucket expression and must stay in step
// with it.
func BucketLabel(startTime string, b Bucketing) (string, error) {
	t, err := parseTimestamp(startTime)
	if err != nil {
		return "", err
	}

	if b.Grouping == GroupingDaily || b.IntervalMinutes == 1440 {
		return t.Format("2006-01-02"), nil
	}

	switch b.IntervalMinutes {
	case 15, 30:
		minute := t.Minute() - t.Minute()%b.IntervalMinutes
		truncated := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
		return truncated.Format("2006-01-02 15:04"), nil
	case 60:
		truncated := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		return truncated.Format("2006-01-02 15:04"), nil
	default:
		return "", fmt.Errorf("invalid interval minutes %d", b.IntervalMinutes)
	}
}

// ValidBucketing reports whether the combination of grouping and interval is
// one the aggregation layer supports.
func ValidBucketing(b Bucketing) bool {
	switch b.Grouping {
	case GroupingDaily:
		return true
	case GroupingInterval:
		switch b.IntervalMinutes {
		case 15, 30, 60, 1440:
			return true
		}
	}
	return false
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
