package excel

import (
	"math"

	"github.com/xuri/excelize/v2"

	"abcost/internal/model"
)

// 报告 sheet 名称
const (
	SheetCostpools  = "Costpools"
	SheetEvents     = "Events"
	SheetAllocation = "Cost_Allocation"
	SheetSummary    = "Summary"
)

// Exporter ABC报告导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportReport 生成最终 ABC 报告工作簿
// 四个 sheet：成本池费率表（3位小数）、原始事件表、分摊矩阵（2位小数）、
// Type 汇总表（2位小数）。
func (e *Exporter) ExportReport(rated []*model.RatedCostPool, events *model.EventTable, matrix *model.AllocationMatrix, summary *model.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetCostpools)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	e.writeCostpools(f, rated, headerStyle)
	e.writeEvents(f, events, headerStyle)
	e.writeAllocation(f, matrix, headerStyle)
	e.writeSummary(f, summary, headerStyle)

	return f, nil
}

// writeCostpools 写入成本池费率表
func (e *Exporter) writeCostpools(f *excelize.File, rated []*model.RatedCostPool, headerStyle int) {
	headers := []string{"Activity", "Type", "Total_Cost", "Driver", "Driver_Units", "RatePerDriverUnit"}
	writeHeaderRow(f, SheetCostpools, headers, headerStyle)

	for i, p := range rated {
		row := []interface{}{
			p.Activity,
			p.Type,
			round(p.TotalCost, 3),
			p.Driver,
			round(p.DriverUnits, 3),
			round(p.RatePerDriverUnit, 3),
		}
		writeRow(f, SheetCostpools, i+2, row)
	}

	f.SetColWidth(SheetCostpools, "A", "A", 25)
	f.SetColWidth(SheetCostpools, "B", "F", 18)
}

// writeEvents 原样回写事件表（含合计行）
func (e *Exporter) writeEvents(f *excelize.File, events *model.EventTable, headerStyle int) {
	f.NewSheet(SheetEvents)
	if events == nil {
		return
	}

	writeHeaderRow(f, SheetEvents, events.Header, headerStyle)
	for i, raw := range events.RawRows {
		row := make([]interface{}, len(raw))
		for j, v := range raw {
			row[j] = v
		}
		writeRow(f, SheetEvents, i+2, row)
	}

	f.SetColWidth(SheetEvents, "A", "A", 20)
}

// writeAllocation 写入 航班 × 活动 分摊矩阵
func (e *Exporter) writeAllocation(f *excelize.File, matrix *model.AllocationMatrix, headerStyle int) {
	f.NewSheet(SheetAllocation)
	if matrix == nil {
		return
	}

	headers := append([]string{"Flight"}, matrix.Activities...)
	headers = append(headers, "Total_Cost_Per_Flight")
	writeHeaderRow(f, SheetAllocation, headers, headerStyle)

	for i, r := range matrix.Rows {
		row := make([]interface{}, 0, len(headers))
		row = append(row, r.Flight)
		for _, a := range matrix.Activities {
			row = append(row, round(r.Costs[a], 2))
		}
		row = append(row, round(r.TotalCost, 2))
		writeRow(f, SheetAllocation, i+2, row)
	}

	f.SetColWidth(SheetAllocation, "A", "A", 20)
}

// writeSummary 写入按 Type 汇总表
func (e *Exporter) writeSummary(f *excelize.File, summary *model.Summary, headerStyle int) {
	f.NewSheet(SheetSummary)
	if summary == nil {
		return
	}

	headers := make([]string, 0, len(summary.Types)+2)
	headers = append(headers, "Flight")
	for _, t := range summary.Types {
		headers = append(headers, t+"_Cost")
	}
	headers = append(headers, "Total_Cost_Per_Flight")
	writeHeaderRow(f, SheetSummary, headers, headerStyle)

	for i, r := range summary.Rows {
		row := make([]interface{}, 0, len(headers))
		row = append(row, r.Flight)
		for _, t := range summary.Types {
			row = append(row, round(r.TypeCosts[t], 2))
		}
		row = append(row, round(r.TotalCost, 2))
		writeRow(f, SheetSummary, i+2, row)
	}

	f.SetColWidth(SheetSummary, "A", "A", 20)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetRowStyle(sheet, 1, 1, style)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		f.SetCellValue(sheet, cell, v)
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
