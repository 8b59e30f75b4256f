package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	RecordsSheet   = "Records"
	DistrictsSheet = "Districts"
)

// RecordHeader is the column order shared by the xlsx and CSV exports.
var RecordHeader = []string{"timestamp", "district", "role", "age_group", "relation", "identity", "amount", "greeting"}

var districtHeader = []string{"district", "count", "average", "median", "min", "max"}

// RecordRow flattens a record in RecordHeader order. A missing amount is an empty cell.
func RecordRow(r model.SurveyRecord) []string {
	amount := ""
	if r.HasAmount() {
		amount = fmt.Sprintf("%g", *r.Amount)
	}
	return []string{r.Timestamp, r.District, r.Role, r.AgeGroup, r.Relation, r.Identity, amount, r.Greeting}
}

// WriteWorkbook writes an xlsx with one sheet of raw records and one of per-district stats.
func WriteWorkbook(w io.Writer, records []model.SurveyRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, RecordsSheet, 1, toAny(RecordHeader)); err != nil {
		return err
	}
	for i, r := range records {
		row := make([]any, 0, len(RecordHeader))
		for j, cell := range RecordRow(r) {
			if j == 6 && r.HasAmount() {
				row = append(row, *r.Amount)
				continue
			}
			row = append(row, cell)
		}
		if err := writeRow(f, RecordsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(DistrictsSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", DistrictsSheet, err)
	}
	if err := writeRow(f, DistrictsSheet, 1, toAny(districtHeader)); err != nil {
		return err
	}
	byDistrict := survey.StatsByDistrict(records)
	for i, d := range districtOrder(byDistrict) {
		s := byDistrict[d]
		if err := writeRow(f, DistrictsSheet, i+2, []any{d, s.Count, s.Average, s.Median, s.Min, s.Max}); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// districtOrder lists the 18 districts in their canonical order, then any unknown names sorted.
func districtOrder(stats map[string]model.DistrictStats) []string {
	out := make([]string, 0, len(stats))
	out = append(out, model.HKDistricts...)
	var extra []string
	for d := range stats {
		if !model.IsDistrict(d) {
			extra = append(extra, d)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
