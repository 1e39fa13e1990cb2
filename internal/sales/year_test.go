package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcademicYearLabel(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"january", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "25-26"},
		{"august still previous year", time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC), "25-26"},
		{"september rolls over", time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), "26-27"},
		{"december", time.Date(2026, time.December, 24, 0, 0, 0, 0, time.UTC), "26-27"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AcademicYearLabel(tc.at))
		})
	}
}
