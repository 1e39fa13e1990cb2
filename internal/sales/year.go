package sales

import (
	"fmt"
	"time"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// AcademicYearLabel returns the sales-year label ("YY-YY") the given
// moment falls in.  The year rolls over after MonthNewAcademicYear:
// through August the label still spans the previous calendar year.
func AcademicYearLabel(now time.Time) string {
	year := now.Year()
	if now.Month() <= model.MonthNewAcademicYear {
		return fmt.Sprintf("%02d-%02d", (year-1)%100, year%100)
	}
	return fmt.Sprintf("%02d-%02d", year%100, (year+1)%100)
}
