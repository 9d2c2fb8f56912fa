package gateway

import (
	"strconv"
	"time"
	_ "time/tzdata"
)

// The authority expects local time without an offset
var location = mustLoadLocation("Europe/Ljubljana")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func formatTime(t time.Time) string {
	return t.In(location).Format("2006-01-02T15:04:05")
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
