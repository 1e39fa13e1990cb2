package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoster(t *testing.T) {
	csv := strings.Join([]string{
		"Login,CID/Card Number,First Name,Surname,Email",
		"jdoe,12345,Jane,Doe,jane@example.edu",
		"asmith,67890,Alex,Smith,alex@example.edu",
	}, "\n")

	students, err := ParseRoster(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "jdoe", students[0].Login)
	assert.Equal(t, "12345", students[0].CID)
	assert.Equal(t, "Jane", students[0].FirstName)
	assert.Equal(t, "Doe", students[0].Surname)
	assert.Equal(t, "jane@example.edu", students[0].Email)
	assert.Equal(t, "asmith", students[1].Login)
}

func TestParseRosterReorderedColumns(t *testing.T) {
	csv := strings.Join([]string{
		"Surname,Login,First Name",
		"Doe,jdoe,Jane",
	}, "\n")

	students, err := ParseRoster(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "jdoe", students[0].Login)
	assert.Equal(t, "Doe", students[0].Surname)
	assert.Empty(t, students[0].Email)
}

func TestParseRosterSkipsRowsWithoutLogin(t *testing.T) {
	csv := strings.Join([]string{
		"Login,Surname",
		",Doe",
		"asmith,Smith",
	}, "\n")

	students, err := ParseRoster(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "asmith", students[0].Login)
}

func TestParseRosterMissingLoginColumn(t *testing.T) {
	_, err := ParseRoster(strings.NewReader("First Name,Surname\nJane,Doe"))
	assert.Error(t, err)
}
