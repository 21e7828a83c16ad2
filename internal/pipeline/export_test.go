package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/homereels/agent-enrich/internal/model"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.xlsx")

	offices := []model.Office{
		{
			Name: "Example Real Estate",
			Agents: []model.Agent{
				{
					Name:          "John Doe",
					ZillowProfile: "https://www.zillow.com/profile/johndoe",
					LinkedIn:      "https://www.linkedin.com/in/johndoe",
					Email:         "john@example.com",
					Phone:         "+1 555 0100",
				},
				{Name: "Jane Roe", ZillowProfile: "https://www.zillow.com/profile/janeroe"},
			},
		},
	}

	rows, err := ExportXLSX(offices, path)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 3) // header + 2 agents

	assert.Equal(t, "Agent Name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "John Doe", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "john@example.com", sheet.Rows[1].Cells[3].String())
	assert.Equal(t, "Example Real Estate", sheet.Rows[1].Cells[6].String())
	assert.Equal(t, "Jane Roe", sheet.Rows[2].Cells[0].String())
	assert.Empty(t, sheet.Rows[2].Cells[3].String())
}

func TestExportXLSX_EmptyArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	rows, err := ExportXLSX(nil, path)
	require.NoError(t, err)
	assert.Zero(t, rows)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 1) // header only
}

func TestExportTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "30-08-2026_14-05-09", exportTimestamp(ts))
}
