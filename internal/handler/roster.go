package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// ParseRoster reads a class roster CSV exported from the booking
// sheet.  The header names the columns; order does not matter and
// extra columns are ignored.  Rows without a login are skipped.
func ParseRoster(r io.Reader) ([]model.Student, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("roster: read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[normalizeHeader(name)] = i
	}
	loginIdx, ok := col["login"]
	if !ok {
		return nil, fmt.Errorf("roster: missing Login column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var students []model.Student
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: read row: %w", err)
		}
		login := ""
		if loginIdx < len(row) {
			login = strings.TrimSpace(row[loginIdx])
		}
		if login == "" {
			continue
		}
		students = append(students, model.Student{
			Login:     login,
			CID:       field(row, "cid/card number"),
			FirstName: field(row, "first name"),
			Surname:   field(row, "surname"),
			Email:     field(row, "email"),
		})
	}
	return students, nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
