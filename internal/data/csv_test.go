package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sipbacktester/types"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadNAVCSV(t *testing.T) {
	// Unsorted rows, a thousands separator and one junk row.
	path := writeTempCSV(t, `Date,Close
2023-01-03,"1,234.56"
2023-01-01,100.5
not-a-date,99
2023-01-02,101.25
`)

	points, err := LoadNAVCSV(path)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Timestamp)
	assert.True(t, points[0].NAV.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, points[2].NAV.Equal(decimal.RequireFromString("1234.56")))
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestLoadNAVCSV_FallbackColumns(t *testing.T) {
	// No recognisable headers: first column is the date, last the price.
	path := writeTempCSV(t, `when,open,last
2023-05-01,99,100
2023-05-02,100,102
`)

	points, err := LoadNAVCSV(path)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[1].NAV.Equal(decimal.RequireFromString("102")))
}

func TestLoadNAVCSV_NoUsableRows(t *testing.T) {
	path := writeTempCSV(t, `Date,Close
garbage,also garbage
`)
	_, err := LoadNAVCSV(path)
	assert.ErrorIs(t, err, NoRowsErr)
}

func TestLatestVIX(t *testing.T) {
	path := writeTempCSV(t, `Date,Close
2023-01-01,15.5
2023-01-10,27.1
2023-01-20,19.8
`)
	history, err := LoadVIXCSV(path)
	require.NoError(t, err)
	require.Len(t, history, 3)

	tests := []struct {
		name  string
		asOf  time.Time
		want  string
		isErr bool
	}{
		{"exact date", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), "27.1", false},
		{"between observations uses prior", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), "27.1", false},
		{"after last observation", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), "19.8", false},
		{"before first observation", time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LatestVIX(history, tt.asOf)
			if tt.isErr {
				assert.ErrorIs(t, err, NoVIXForDateErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestLatestVIX_EmptyHistory(t *testing.T) {
	_, err := LatestVIX([]types.VIXPoint{}, time.Now())
	assert.ErrorIs(t, err, NoVIXForDateErr)
}
