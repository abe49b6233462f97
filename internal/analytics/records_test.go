package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/internal/dataset"
)

func TestCrimes(t *testing.T) {
	svc := newTestService(t)

	gov, err := svc.Crimes(dataset.Government, "2020")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cyber Crime", "Kidnapping", "Murder", "Theft"}, gov)

	foreign, err := svc.Crimes(dataset.Foreign, "1999")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheating", "Drug Offences", "Theft"}, foreign)
}

func TestRecords(t *testing.T) {
	svc := newTestService(t)

	murders, err := svc.Records(dataset.Government, "all", "murder", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, murders.TotalRows)
	require.Len(t, murders.Rows, 2)
	assert.Equal(t, int64(28918), murders.Rows[0]["Cases Registered"])
	assert.Equal(t, []string{"Crime Head", "Cases Registered", "Persons Arrested", "Persons Convicted"}, murders.Columns)

	page, err := svc.Records(dataset.Government, "2020", "all", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalRows)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PerPage)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Cyber Crime", page.Rows[0]["Crime Head"])

	beyond, err := svc.Records(dataset.Government, "2020", "", 9, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond.Rows)

	unpaged, err := svc.Records(dataset.Foreign, "2020", "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, unpaged.Rows, 3)
	assert.Zero(t, unpaged.Page)
}

func TestCrimeRecord(t *testing.T) {
	svc := newTestService(t)

	rec, year, err := svc.CrimeRecord(dataset.Government, "2020", "MURDER")
	require.NoError(t, err)
	assert.Equal(t, "2020", year)
	assert.Equal(t, int64(35000), rec["Persons Arrested"])

	_, _, err = svc.CrimeRecord(dataset.Government, "2020", "jaywalking")
	assert.ErrorIs(t, err, ErrCrimeNotFound)
}

func TestNumericTotal(t *testing.T) {
	svc := newTestService(t)

	total, year, err := svc.NumericTotal(dataset.Foreign, "")
	require.NoError(t, err)
	assert.Equal(t, "2020", year)
	assert.Equal(t, int64(1155), total)

	total, _, err = svc.NumericTotal(dataset.Foreign, "2016")
	require.NoError(t, err)
	assert.Equal(t, int64(760), total)
}

func TestHighestColumnTrend(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.HighestColumnTrend(dataset.Government)
	require.NoError(t, err)
	assert.Equal(t, map[string]ColumnMax{
		"2019": {Crime: "Cases Registered", Value: 438918},
		"2020": {Crime: "Cases Registered", Value: 563033},
	}, got)

	p := dataset.NewStaticProvider()
	p.Add(dataset.Foreign, "2020", dataset.NewTable([]string{"Crime Head"}, [][]string{{"Theft"}}))
	empty, err := NewService(p, nil).HighestColumnTrend(dataset.Foreign)
	require.NoError(t, err)
	assert.Equal(t, ColumnMax{Crime: "-"}, empty["2020"])
}
