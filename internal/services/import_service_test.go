package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/models"
)

const csvHeader = "title,description,category,starts_at,ends_at,location,city,website\n"

func TestImportCSVAllValid(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewImportService(NewEventService(repo))

	data := csvHeader +
		"GopherCon,Annual Go conference,conference,2030-06-01 09:00,2030-06-03 18:00,CityCube,Berlin,https://gophercon.example\n" +
		"Go Workshop,Hands-on generics,workshop,2030-07-01T10:00:00Z,2030-07-01T17:00:00Z,,Amsterdam,\n"

	res, err := svc.ImportCSV(strings.NewReader(data), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)

	events, err := repo.List(models.EventFilter{OwnerID: 5})
	require.NoError(t, err)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, models.EventPending, e.Status, "imported events wait for moderation")
	}
}

func TestImportCSVPartialFailure(t *testing.T) {
	svc := NewImportService(NewEventService(newFakeEventRepo()))

	data := csvHeader +
		"Good Event,,seminar,2030-06-01 09:00,2030-06-01 12:00,,Oslo,\n" +
		",missing title,seminar,2030-06-01 09:00,2030-06-01 12:00,,Oslo,\n" +
		"Bad Category,,hackathon,2030-06-01 09:00,2030-06-01 12:00,,Oslo,\n" +
		"Bad Time,,seminar,yesterday,2030-06-01 12:00,,Oslo,\n"

	res, err := svc.ImportCSV(strings.NewReader(data), 1)
	require.NoError(t, err, "row failures must not abort the import")

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	// header is line 1, first data row line 2
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Equal(t, 4, res.Errors[1].Line)
	assert.Equal(t, 5, res.Errors[2].Line)
}

func TestImportCSVUnreadableFile(t *testing.T) {
	svc := NewImportService(NewEventService(newFakeEventRepo()))

	_, err := svc.ImportCSV(strings.NewReader("not,a,matching\nheader"), 1)
	assert.Error(t, err)
}
