package model

import (
	"fmt"
	"strconv"
	"time"
)

// ClassRef identifies one class occurrence.  The value is a fixed-width
// "YYYYMMDDHHmm" token encoding the exact start time of the class, so
// two refs can be ordered by the instant they encode.  Refs are never
// compared lexicographically: the encoded fields are decoded with fixed
// widths (4-digit year, 2-digit month, day, hour and minute) and turned
// back into a calendar instant before comparing.
type ClassRef string

// RefFromTime builds the canonical ref for a class starting at t.
func RefFromTime(t time.Time) ClassRef {
	return ClassRef(fmt.Sprintf("%04d%02d%02d%02d%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()))
}

// Valid reports whether the ref is a well-formed 12-digit token.
func (r ClassRef) Valid() bool {
	if len(r) != 12 {
		return false
	}
	for _, ch := range r {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// Time decodes the ref into the instant it encodes, in UTC.  A
// malformed ref decodes to the zero time.
func (r ClassRef) Time() time.Time {
	if !r.Valid() {
		return time.Time{}
	}
	year, _ := strconv.Atoi(string(r[0:4]))
	month, _ := strconv.Atoi(string(r[4:6]))
	day, _ := strconv.Atoi(string(r[6:8]))
	hour, _ := strconv.Atoi(string(r[8:10]))
	min, _ := strconv.Atoi(string(r[10:12]))
	return time.Date(year, time.Month(month), day, hour, min, 0, 0, time.UTC)
}

// Compare orders two refs by their encoded instants.  The result is
// positive when r is later than other, negative when earlier and zero
// when both encode the same minute.
func (r ClassRef) Compare(other ClassRef) int {
	return r.Time().Compare(other.Time())
}
