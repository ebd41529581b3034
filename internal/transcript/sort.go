package transcript

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"chatview/internal/models"
)

var ErrUnparseable = errors.New("unparseable timestamp")

// ParseInstant reads a day/month/year date and an hour:minute time. Seconds
// are ignored, two-digit years land in the 2000s, and a trailing AM/PM is
// honoured.
func ParseInstant(date, clock string) (time.Time, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(date), func(r rune) bool {
		return r == '/' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrUnparseable, date)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrUnparseable, date)
	}
	switch len(parts[2]) {
	case 2:
		year += 2000
	case 4:
	default:
		return time.Time{}, fmt.Errorf("%w: year %q", ErrUnparseable, parts[2])
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrUnparseable, date)
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

func parseClock(clock string) (int, int, error) {
	s := strings.ToLower(strings.TrimSpace(clock))
	s = strings.NewReplacer(" ", "", "\u202f", "", "\u00a0", "", ".", "").Replace(s)
	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrUnparseable, clock)
	}
	hour, err1 := strconv.Atoi(fields[0])
	minute, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrUnparseable, clock)
	}
	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return 0, 0, fmt.Errorf("%w: time %q", ErrUnparseable, clock)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: time %q", ErrUnparseable, clock)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	}
	return hour, minute, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type keyed struct {
	msg models.Message
	at  time.Time
}

// Sort orders messages by timestamp, oldest first, keeping scan order for
// equal timestamps. A message whose timestamp cannot be parsed stays in its
// slot and the others are ordered around it. Ids are renumbered 0..n-1.
func Sort(messages []models.Message) {
	var slots []int
	var items []keyed
	for i, m := range messages {
		at, err := ParseInstant(m.Date, m.Time)
		if err != nil {
			continue
		}
		slots = append(slots, i)
		items = append(items, keyed{msg: m, at: at})
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].at.Before(items[b].at)
	})
	for k, slot := range slots {
		messages[slot] = items[k].msg
	}
	for i := range messages {
		messages[i].ID = i
	}
}
