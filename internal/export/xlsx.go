// Package export renders plans as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/udisondev/craftplan/internal/plan"
)

const maxSheetName = 31

var stepHeaders = []string{"Step", "Text", "Status", "Dataset", "Match", "Confidence", "Resolution"}

// WritePlanXLSX writes p as a workbook with one sheet per route.
func WritePlanXLSX(p *plan.Plan, w io.Writer) error {
	f, err := PlanWorkbook(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// PlanWorkbook builds the workbook of p. Each sheet holds the route's step
// table followed by its risk × budget matrix.
func PlanWorkbook(p *plan.Plan) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, route := range p.Routes() {
		name := SheetName(i, route.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				f.Close()
				return nil, fmt.Errorf("naming sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %q: %w", name, err)
		}

		if err := writeRoute(f, name, route, p, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	return f, nil
}

// SheetName returns a valid, unique sheet name for the i-th route.
func SheetName(i int, route string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, route)
	name := fmt.Sprintf("%d %s", i+1, clean)
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return strings.TrimSpace(name)
}

func writeRoute(f *excelize.File, sheet string, route plan.Route, p *plan.Plan, headerStyle int) error {
	row := 1
	if err := setRow(f, sheet, row, toAny(stepHeaders)); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, row, row, headerStyle); err != nil {
		return err
	}

	for i, s := range route.Steps {
		row++
		values := []any{i + 1, s.Text, string(s.Status), "", "", "", s.Resolution}
		if a, ok := s.Primary(); ok {
			values[3] = string(a.Dataset)
			values[4] = a.Entry.Info().Name
			values[5] = a.Confidence
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
	}

	row += 2
	header := []any{"Risk \\ Budget"}
	for _, b := range p.BudgetTiers {
		header = append(header, b.String())
	}
	if err := setRow(f, sheet, row, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, row, row, headerStyle); err != nil {
		return err
	}

	for _, r := range p.RiskTiers {
		row++
		values := []any{r.String()}
		for _, b := range p.BudgetTiers {
			o, ok := route.Option(r, b)
			switch {
			case !ok:
				values = append(values, "")
			case o.Satisfiable:
				values = append(values, o.Total)
			default:
				values = append(values, "unsatisfiable: "+o.Reason)
			}
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "G", 18)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
