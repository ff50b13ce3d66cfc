// internal/workers/insight/export-insight-report/report.go
package exportinsightreport

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"attrition-workers/internal/insight"
	"attrition-workers/internal/models"
)

const SheetName = "Attrition"

var header = []interface{}{
	"Employee ID", "Name", "Department", "Risk Level", "Probability", "Drivers", "Actions",
}

// reportRow flattens one prediction and its parsed narrative into a sheet row.
func reportRow(p models.Prediction) []interface{} {
	parsed := insight.Parse(p.TextAI, p.Classification)
	return []interface{}{
		p.EmployeeID,
		p.Name,
		p.Department,
		parsed.RiskLevel,
		p.Probability,
		strings.Join(parsed.Drivers, "; "),
		actionsText(parsed),
	}
}

func actionsText(in insight.Insight) string {
	if in.Actions.Empty() {
		return strings.Join(in.ActionItems, "; ")
	}
	var parts []string
	if in.Actions.Us != "" {
		parts = append(parts, insight.LabelUs+": "+stripTags(in.Actions.Us))
	}
	if in.Actions.Client != "" {
		parts = append(parts, insight.LabelClient+": "+stripTags(in.Actions.Client))
	}
	return strings.Join(parts, " | ")
}

var tagReplacer = strings.NewReplacer(
	"<b>", "", "</b>", "", "<strong>", "", "</strong>", "",
	"<em>", "", "</em>", "", "<i>", "", "</i>", "", "<br>", " ",
)

func stripTags(s string) string {
	return strings.TrimSpace(tagReplacer.Replace(s))
}

// writeReport saves one sheet with a header row and a row per prediction.
func writeReport(path string, predictions []models.Prediction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range predictions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := reportRow(p)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
