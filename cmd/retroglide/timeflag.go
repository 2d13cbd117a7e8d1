package main

import (
	"fmt"
	"time"
)

// timeLayouts are tried in order by parseTime.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads s in the IANA zone tz. An empty s means now.
func parseTime(s, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time zone %q: %w", tz, err)
	}
	if s == "" {
		return time.Now().In(loc), nil
	}

	var parseErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("could not parse time %q: %w", s, parseErr)
}
