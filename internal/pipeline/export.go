package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/model"
)

// exportColumns defines the ordered spreadsheet output columns.
var exportColumns = []string{
	"Agent Name",
	"Title",
	"LinkedIn URL",
	"Email",
	"Phone",
	"Zillow Profile",
	"Office",
}

// runExport writes the final checkpoint to a timestamped spreadsheet.
func (p *Pipeline) runExport(ctx context.Context, _ Options) (enrich.Stats, string, error) {
	var stats enrich.Stats

	if err := ctx.Err(); err != nil {
		return stats, "", eris.Wrap(err, "export: cancelled")
	}

	input, err := p.ckpt.Load(artifactNames[StageContacts])
	if err != nil {
		return stats, "", eris.Wrap(err, "export: load contacts checkpoint")
	}

	name := fmt.Sprintf("Agents_Data_%s.xlsx", exportTimestamp(p.now()))
	path := filepath.Join(p.cfg.Export.Dir, name)

	rows, err := ExportXLSX(input, path)
	if err != nil {
		return stats, "", err
	}
	stats.Attempted = rows
	stats.Enriched = rows

	zap.L().Info("export: spreadsheet written", zap.String("path", path), zap.Int("rows", rows))
	return stats, path, nil
}

// ExportXLSX writes one row per agent to an xlsx file at path and returns
// the number of data rows written.
func ExportXLSX(offices []model.Office, path string) (int, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Agents")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportColumns {
		header.AddCell().SetString(col)
	}

	rows := 0
	for _, office := range offices {
		for _, agent := range office.Agents {
			row := sheet.AddRow()
			for _, v := range []string{
				agent.Name,
				agent.Title,
				agent.LinkedIn,
				agent.Email,
				agent.Phone,
				agent.ZillowProfile,
				office.Name,
			} {
				row.AddCell().SetString(v)
			}
			rows++
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, eris.Wrap(err, "export: create dir")
		}
	}
	if err := file.Save(path); err != nil {
		return 0, eris.Wrap(err, "export: save file")
	}
	return rows, nil
}

// exportTimestamp formats t the way export filenames expect. Split out for
// tests.
func exportTimestamp(t time.Time) string {
	return t.Format("02-01-2006_15-04-05")
}
