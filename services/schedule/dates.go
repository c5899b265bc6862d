package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the strict date form every comparison runs on.
const DateLayout = "2006-01-02"

// Validation errors surfaced upstream instead of silently defaulting to "now".
var (
	ErrUnparseableDate = errors.New("unrecognized date")
	ErrUnparseableTime = errors.New("unrecognized time")
)

var weekdays = map[string]time.Weekday{
	"minggu": time.Sunday, "sunday": time.Sunday,
	"senin": time.Monday, "monday": time.Monday,
	"selasa": time.Tuesday, "tuesday": time.Tuesday,
	"rabu": time.Wednesday, "wednesday": time.Wednesday,
	"kamis": time.Thursday, "thursday": time.Thursday,
	"jumat": time.Friday, "jum'at": time.Friday, "friday": time.Friday,
	"sabtu": time.Saturday, "saturday": time.Saturday,
}

var months = map[string]time.Month{
	"januari": time.January, "january": time.January,
	"februari": time.February, "february": time.February,
	"maret": time.March, "march": time.March,
	"april": time.April,
	"mei":  time.May, "may": time.May,
	"juni": time.June, "june": time.June,
	"juli": time.July, "july": time.July,
	"agustus": time.August, "august": time.August,
	"september": time.September,
	"oktober":   time.October, "october": time.October,
	"november":  time.November,
	"desember":  time.December, "december": time.December,
}

var (
	dmyPattern       = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	dayMonthPattern  = regexp.MustCompile(`^(\d{1,2})\s+([a-z']+)(?:\s+(\d{4}))?$`)
	clockPattern     = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?$`)
)

// NormalizeDate turns a strict or natural-language date fragment into
// "YYYY-MM-DD". Natural-language fragments are resolved relative to now.
// Anything unrecognized is an error, never today's date.
func NormalizeDate(raw string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrUnparseableDate
	}

	if t, err := time.ParseInLocation(DateLayout, s, now.Location()); err == nil {
		return t.Format(DateLayout), nil
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return buildDate(year, time.Month(month), day)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch s {
	case "hari ini", "today":
		return today.Format(DateLayout), nil
	case "besok", "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout), nil
	case "lusa", "besok lusa", "day after tomorrow":
		return today.AddDate(0, 0, 2).Format(DateLayout), nil
	case "minggu depan", "next week":
		return today.AddDate(0, 0, 7).Format(DateLayout), nil
	}

	if wd, ok := weekdays[strings.TrimPrefix(s, "hari ")]; ok {
		ahead := (int(wd) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			// A bare weekday name spoken on that weekday means next week's.
			ahead = 7
		}
		return today.AddDate(0, 0, ahead).Format(DateLayout), nil
	}

	if m := dayMonthPattern.FindStringSubmatch(s); m != nil {
		month, ok := months[m[2]]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
		}
		day, _ := strconv.Atoi(m[1])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		date, err := buildDate(year, month, day)
		if err != nil {
			return "", err
		}
		// Without an explicit year, a date already behind us means next year.
		if m[3] == "" && date < today.Format(DateLayout) {
			return buildDate(year+1, month, day)
		}
		return date, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

// NormalizeTime turns "HH:mm", "HH.mm", or a bare hour (optionally prefixed
// with "jam") into strict "HH:mm".
func NormalizeTime(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "jam "))
	if s == "" {
		return "", ErrUnparseableTime
	}

	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrUnparseableTime, raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrUnparseableTime, raw)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// TimeToMinutes converts strict "HH:mm" into minutes from midnight.
func TimeToMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, hhmm)
	}
	return hour*60 + minute, nil
}

func buildDate(year int, month time.Month, day int) (string, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30), which we treat as invalid.
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", fmt.Errorf("%w: %04d-%02d-%02d", ErrUnparseableDate, year, month, day)
	}
	return t.Format(DateLayout), nil
}

func addDays(date string, days int) string {
	t, _ := time.Parse(DateLayout, date)
	return t.AddDate(0, 0, days).Format(DateLayout)
}
