package excel_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"abcost/internal/model"
	"abcost/internal/service/excel"
)

// buildWorkbook 构造内存工作簿并加载到解析器
// sheets 按给定顺序创建，每个 sheet 的第一行是表头。
func buildWorkbook(t *testing.T, names []string, rows map[string][][]interface{}) *excel.Parser {
	t.Helper()

	wb := excelize.NewFile()
	for i, name := range names {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
		} else {
			if _, err := wb.NewSheet(name); err != nil {
				t.Fatalf("NewSheet failed: %v", err)
			}
		}
		for r, row := range rows[name] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := wb.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow failed: %v", err)
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	p := excel.NewParser()
	if err := p.LoadFile(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	return p
}

func testWorkbookRows() map[string][][]interface{} {
	return map[string][][]interface{}{
		"ABC Costpools": {
			{"Activity", "Type", "Total_Cost", "Driver", "Notes"},
			{"Fuel", "Direct", "1,000", "Distance", "ignored"},
			{"Handling", "Indirect", 400, "Passengers", ""},
		},
		"Flight Events": {
			{"Flight", "Continent", "Destination Code", "Departure Time", "Distance", "Passengers"},
			{"FL001", "Europe", "LHR", "2024-05-01 08:30:00", 1000, 180},
			{"FL002", "Asia", "NRT", "2024-05-01 22:10:00", 4000, 220},
			{"Total", "", "", "", 5000, 400},
		},
	}
}

func TestResolveSheetsByKeyword(t *testing.T) {
	// 事件表在前：关键字命中必须胜过位置回退
	p := buildWorkbook(t, []string{"Flight Events", "ABC Costpools"}, testWorkbookRows())

	costSheet, eventSheet, err := p.ResolveSheets("cost", "event")
	if err != nil {
		t.Fatalf("ResolveSheets failed: %v", err)
	}
	if costSheet != "ABC Costpools" {
		t.Errorf("costSheet = %q, want ABC Costpools", costSheet)
	}
	if eventSheet != "Flight Events" {
		t.Errorf("eventSheet = %q, want Flight Events", eventSheet)
	}
}

func TestResolveSheetsFallback(t *testing.T) {
	p := buildWorkbook(t, []string{"Flight Events", "ABC Costpools"}, testWorkbookRows())

	// 关键字都不命中时按位置回退：第一个 sheet 当成本池，第二个当事件表
	costSheet, eventSheet, err := p.ResolveSheets("zzz", "yyy")
	if err != nil {
		t.Fatalf("ResolveSheets failed: %v", err)
	}
	if costSheet != "Flight Events" {
		t.Errorf("costSheet = %q, want Flight Events", costSheet)
	}
	if eventSheet != "ABC Costpools" {
		t.Errorf("eventSheet = %q, want ABC Costpools", eventSheet)
	}
}

func TestParseCostPools(t *testing.T) {
	p := buildWorkbook(t, []string{"ABC Costpools", "Flight Events"}, testWorkbookRows())

	pools, err := p.ParseCostPools("ABC Costpools")
	if err != nil {
		t.Fatalf("ParseCostPools failed: %v", err)
	}
	if len(pools) != 2 {
		t.Fatalf("len(pools) = %d, want 2", len(pools))
	}

	if pools[0].Activity != "Fuel" || pools[0].Type != "Direct" || pools[0].Driver != "Distance" {
		t.Errorf("pools[0] = %+v", pools[0])
	}
	// 千分位分隔符应被剥离
	if pools[0].TotalCost != 1000 {
		t.Errorf("pools[0].TotalCost = %v, want 1000", pools[0].TotalCost)
	}
	if pools[1].TotalCost != 400 {
		t.Errorf("pools[1].TotalCost = %v, want 400", pools[1].TotalCost)
	}
}

func TestParseCostPoolsMissingColumns(t *testing.T) {
	rows := map[string][][]interface{}{
		"Costpools": {
			{"Activity", "Type"},
			{"Fuel", "Direct"},
		},
		"Events": testWorkbookRows()["Flight Events"],
	}
	p := buildWorkbook(t, []string{"Costpools", "Events"}, rows)

	_, err := p.ParseCostPools("Costpools")
	if err == nil {
		t.Fatal("ParseCostPools should fail on missing columns")
	}

	var missingErr *model.MissingColumnsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("error type = %T, want *model.MissingColumnsError", err)
	}
	if len(missingErr.Missing) != 2 {
		t.Errorf("Missing = %v, want [Total_Cost Driver]", missingErr.Missing)
	}
}

func TestParseEvents(t *testing.T) {
	p := buildWorkbook(t, []string{"ABC Costpools", "Flight Events"}, testWorkbookRows())

	events, err := p.ParseEvents("Flight Events", "Departure Time")
	if err != nil {
		t.Fatalf("ParseEvents failed: %v", err)
	}

	if events.IDColumn != "Flight" {
		t.Errorf("IDColumn = %q, want Flight", events.IDColumn)
	}
	if events.TimeColumn != "Departure Time" {
		t.Errorf("TimeColumn = %q, want Departure Time", events.TimeColumn)
	}

	// 数值列与分类列的划分
	wantNumeric := []string{"Distance", "Passengers"}
	if len(events.NumericColumns) != 2 || events.NumericColumns[0] != wantNumeric[0] || events.NumericColumns[1] != wantNumeric[1] {
		t.Errorf("NumericColumns = %v, want %v", events.NumericColumns, wantNumeric)
	}
	wantCategory := []string{"Continent", "Destination Code"}
	if len(events.CategoryColumns) != 2 || events.CategoryColumns[0] != wantCategory[0] || events.CategoryColumns[1] != wantCategory[1] {
		t.Errorf("CategoryColumns = %v, want %v", events.CategoryColumns, wantCategory)
	}

	// 末行拆为合计记录
	if len(events.Flights) != 2 {
		t.Fatalf("len(Flights) = %d, want 2", len(events.Flights))
	}
	if events.Totals == nil || events.Totals.Flight != "Total" {
		t.Fatalf("Totals = %+v", events.Totals)
	}
	if events.Totals.Drivers["Distance"] != 5000 {
		t.Errorf("Totals Distance = %v, want 5000", events.Totals.Drivers["Distance"])
	}

	f := events.Flights[0]
	if f.Flight != "FL001" {
		t.Errorf("Flight = %q, want FL001", f.Flight)
	}
	if f.Drivers["Distance"] != 1000 || f.Drivers["Passengers"] != 180 {
		t.Errorf("Drivers = %v", f.Drivers)
	}
	if f.Attributes["Continent"] != "Europe" || f.Attributes["Destination Code"] != "LHR" {
		t.Errorf("Attributes = %v", f.Attributes)
	}
	if f.DepartureTime != "2024-05-01 08:30:00" {
		t.Errorf("DepartureTime = %q", f.DepartureTime)
	}
}

func TestParseEventsMixedColumnIsCategorical(t *testing.T) {
	rows := map[string][][]interface{}{
		"Costpools": testWorkbookRows()["ABC Costpools"],
		"Events": {
			{"Flight", "Remark", "Distance"},
			{"FL001", "123", 1000},
			{"FL002", "delayed", 4000},
			{"Total", "", 5000},
		},
	}
	p := buildWorkbook(t, []string{"Costpools", "Events"}, rows)

	events, err := p.ParseEvents("Events", "Departure Time")
	if err != nil {
		t.Fatalf("ParseEvents failed: %v", err)
	}

	// 混合取值的列按分类列处理
	if len(events.NumericColumns) != 1 || events.NumericColumns[0] != "Distance" {
		t.Errorf("NumericColumns = %v, want [Distance]", events.NumericColumns)
	}
	if len(events.CategoryColumns) != 1 || events.CategoryColumns[0] != "Remark" {
		t.Errorf("CategoryColumns = %v, want [Remark]", events.CategoryColumns)
	}
}

func TestParseEventsNoDataRows(t *testing.T) {
	rows := map[string][][]interface{}{
		"Costpools": testWorkbookRows()["ABC Costpools"],
		"Events": {
			{"Flight", "Distance"},
		},
	}
	p := buildWorkbook(t, []string{"Costpools", "Events"}, rows)

	if _, err := p.ParseEvents("Events", "Departure Time"); err == nil {
		t.Fatal("ParseEvents should fail when sheet has header only")
	}
}

func TestParseEventsTotalsOnly(t *testing.T) {
	rows := map[string][][]interface{}{
		"Costpools": testWorkbookRows()["ABC Costpools"],
		"Events": {
			{"Flight", "Distance"},
			{"Total", 5000},
		},
	}
	p := buildWorkbook(t, []string{"Costpools", "Events"}, rows)

	events, err := p.ParseEvents("Events", "Departure Time")
	if err != nil {
		t.Fatalf("ParseEvents failed: %v", err)
	}
	if len(events.Flights) != 0 {
		t.Errorf("len(Flights) = %d, want 0", len(events.Flights))
	}
	if events.Totals.Drivers["Distance"] != 5000 {
		t.Errorf("Totals Distance = %v, want 5000", events.Totals.Drivers["Distance"])
	}
}
