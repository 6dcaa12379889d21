package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Calendar keys look like "January 1, 2025, Wednesday"
const holidayDateLayout = "January 2, 2006, Monday"

type Holiday struct {
	Name string    `json:"name"`
	Type string    `json:"type"`
	Date time.Time `json:"date"`
}

func (h Holiday) String() string {
	kind := h.Type
	if kind == "" {
		kind = "Festival"
	}
	return fmt.Sprintf("%s (%s) - %s", h.Name, kind, h.Date.Format(holidayDateLayout))
}

type calendarEntry struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// Calendar is a parsed holidays file: {"2025": {"January 2025": {"January 1, 2025, Wednesday": {"event": ..., "type": ...}}}}
type Calendar []Holiday

func LoadCalendar(path string) (Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading holidays: %w", err)
	}
	return ParseCalendar(data)
}

func ParseCalendar(data []byte) (Calendar, error) {
	var years map[string]map[string]map[string]calendarEntry
	if err := json.Unmarshal(data, &years); err != nil {
		return nil, fmt.Errorf("parsing holidays: %w", err)
	}
	var result Calendar
	for _, months := range years {
		for _, days := range months {
			for day, entry := range days {
				date, err := time.Parse(holidayDateLayout, strings.TrimSpace(day))
				if err != nil {
					return nil, fmt.Errorf("holiday date %q: %w", day, err)
				}
				name := entry.Event
				if name == "" {
					name = entry.Name
				}
				result = append(result, Holiday{Name: name, Type: entry.Type, Date: date})
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].Name < result[j].Name
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Upcoming returns at most count holidays on or after the day of now
func (c Calendar) Upcoming(now time.Time, count int) []Holiday {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	result := make([]Holiday, 0, count)
	for _, h := range c {
		if len(result) == count {
			break
		}
		if !h.Date.Before(today) {
			result = append(result, h)
		}
	}
	return result
}
