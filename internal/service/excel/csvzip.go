package excel

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"abcost/internal/model"
)

// ExportCSVBundle 将四张结果表打包为 zip 内的 CSV 文件
// CSV 写全精度数值，不做四舍五入。
func (e *Exporter) ExportCSVBundle(rated []*model.RatedCostPool, events *model.EventTable, matrix *model.AllocationMatrix, summary *model.Summary) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	entries := []struct {
		name string
		rows [][]string
	}{
		{"Costpools.csv", costpoolRecords(rated)},
		{"Events.csv", eventRecords(events)},
		{"Cost_Allocation.csv", allocationRecords(matrix)},
		{"Summary.csv", summaryRecords(summary)},
	}

	for _, entry := range entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", entry.name, err)
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(entry.rows); err != nil {
			return nil, fmt.Errorf("write %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func costpoolRecords(rated []*model.RatedCostPool) [][]string {
	rows := [][]string{{"Activity", "Type", "Total_Cost", "Driver", "Driver_Units", "RatePerDriverUnit"}}
	for _, p := range rated {
		rows = append(rows, []string{
			p.Activity,
			p.Type,
			formatFloat(p.TotalCost),
			p.Driver,
			formatFloat(p.DriverUnits),
			formatFloat(p.RatePerDriverUnit),
		})
	}
	return rows
}

func eventRecords(events *model.EventTable) [][]string {
	if events == nil {
		return [][]string{}
	}
	rows := make([][]string, 0, len(events.RawRows)+1)
	rows = append(rows, events.Header)
	rows = append(rows, events.RawRows...)
	return rows
}

func allocationRecords(matrix *model.AllocationMatrix) [][]string {
	if matrix == nil {
		return [][]string{}
	}

	header := append([]string{"Flight"}, matrix.Activities...)
	header = append(header, "Total_Cost_Per_Flight")
	rows := [][]string{header}

	for _, r := range matrix.Rows {
		row := make([]string, 0, len(header))
		row = append(row, r.Flight)
		for _, a := range matrix.Activities {
			row = append(row, formatFloat(r.Costs[a]))
		}
		row = append(row, formatFloat(r.TotalCost))
		rows = append(rows, row)
	}
	return rows
}

func summaryRecords(summary *model.Summary) [][]string {
	if summary == nil {
		return [][]string{}
	}

	header := make([]string, 0, len(summary.Types)+2)
	header = append(header, "Flight")
	for _, t := range summary.Types {
		header = append(header, t+"_Cost")
	}
	header = append(header, "Total_Cost_Per_Flight")
	rows := [][]string{header}

	for _, r := range summary.Rows {
		row := make([]string, 0, len(header))
		row = append(row, r.Flight)
		for _, t := range summary.Types {
			row = append(row, formatFloat(r.TypeCosts[t]))
		}
		row = append(row, formatFloat(r.TotalCost))
		rows = append(rows, row)
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
