package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"abcost/internal/model"
)

// 成本池表必需列
var requiredCostColumns = []string{"Activity", "Type", "Total_Cost", "Driver"}

// Parser 工作簿解析器
type Parser struct {
	file   *excelize.File
	fileID string
}

// NewParser 创建解析器
func NewParser() *Parser {
	return &Parser{
		fileID: uuid.New().String(),
	}
}

// LoadFile 加载Excel文件
func (p *Parser) LoadFile(reader io.Reader) error {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open excel: %w", err)
	}
	p.file = file
	return nil
}

// FileID 获取文件ID
func (p *Parser) FileID() string {
	return p.fileID
}

// Sheets 获取工作表列表
func (p *Parser) Sheets() ([]model.SheetInfo, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	sheets := p.file.GetSheetList()
	result := make([]model.SheetInfo, 0, len(sheets))

	for _, name := range sheets {
		rows, err := p.file.GetRows(name)
		if err != nil {
			continue
		}
		result = append(result, model.SheetInfo{
			Name:     name,
			RowCount: len(rows),
		})
	}

	return result, nil
}

// ResolveSheets 按关键字定位成本池表与事件表
// 名称包含关键字（不区分大小写）的 sheet 优先；
// 找不到时成本池回退第一个 sheet、事件表回退第二个。
func (p *Parser) ResolveSheets(costKeyword, eventKeyword string) (costSheet, eventSheet string, err error) {
	if p.file == nil {
		return "", "", errors.New("no file loaded")
	}

	sheets := p.file.GetSheetList()
	if len(sheets) < 2 {
		return "", "", errors.New("workbook must contain at least two sheets")
	}

	costSheet = findSheetByKeyword(sheets, costKeyword, sheets[0])
	eventSheet = findSheetByKeyword(sheets, eventKeyword, sheets[1])
	return costSheet, eventSheet, nil
}

// ParseCostPools 解析成本池表
// 缺少必需列返回 MissingColumnsError；多余列忽略；Activity 为空的行跳过。
func (p *Parser) ParseCostPools(sheet string) ([]model.CostPool, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	rows, err := p.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &model.MissingColumnsError{Sheet: sheet, Missing: requiredCostColumns}
	}

	// 构建列名到索引的映射
	colIndex := make(map[string]int)
	for i, col := range rows[0] {
		colIndex[strings.TrimSpace(col)] = i
	}

	missing := make([]string, 0)
	for _, col := range requiredCostColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &model.MissingColumnsError{Sheet: sheet, Missing: missing}
	}

	pools := make([]model.CostPool, 0, len(rows)-1)
	for _, row := range rows[1:] {
		activity := getCell(row, colIndex["Activity"])
		if activity == "" {
			continue
		}
		pools = append(pools, model.CostPool{
			Activity:  activity,
			Type:      getCell(row, colIndex["Type"]),
			TotalCost: parseFloat(getCell(row, colIndex["Total_Cost"])),
			Driver:    getCell(row, colIndex["Driver"]),
		})
	}

	return pools, nil
}

// ParseEvents 解析事件表
// 首列为航班标识，末行拆出为合计记录；其余列按取值分为数值列（驱动量）
// 与分类列（过滤属性）。起飞时间列按配置列名定位，不参与数值列判定。
func (p *Parser) ParseEvents(sheet, timeColumn string) (*model.EventTable, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	rows, err := p.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("event sheet %q has no data rows", sheet)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if header[0] == "" {
		return nil, fmt.Errorf("event sheet %q has no identifier column", sheet)
	}

	dataRows := rows[1:]
	timeCol := findExactCol(header, strings.TrimSpace(timeColumn))
	numericCols := detectNumericColumns(header, dataRows, timeCol)

	table := &model.EventTable{
		IDColumn: header[0],
		Header:   header,
		RawRows:  dataRows,
	}
	if timeCol >= 0 {
		table.TimeColumn = header[timeCol]
	}

	for i := 1; i < len(header); i++ {
		if i == timeCol || header[i] == "" {
			continue
		}
		if numericCols[i] {
			table.NumericColumns = append(table.NumericColumns, header[i])
		} else {
			table.CategoryColumns = append(table.CategoryColumns, header[i])
		}
	}

	events := make([]*model.FlightEvent, 0, len(dataRows))
	for i, row := range dataRows {
		events = append(events, buildEvent(row, header, numericCols, timeCol, i+2))
	}

	// 末行保留为合计记录，不参与逐航班计算
	table.Totals = events[len(events)-1]
	table.Flights = events[:len(events)-1]

	return table, nil
}

// Close 关闭文件
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// buildEvent 解析单行事件数据
func buildEvent(row, header []string, numericCols map[int]bool, timeCol, rowNo int) *model.FlightEvent {
	e := &model.FlightEvent{
		Flight:     getCell(row, 0),
		RowNo:      rowNo,
		Drivers:    make(map[string]float64),
		Attributes: make(map[string]string),
	}

	for i := 1; i < len(header); i++ {
		if header[i] == "" {
			continue
		}
		val := getCell(row, i)
		switch {
		case i == timeCol:
			e.DepartureTime = val
		case numericCols[i]:
			if val != "" {
				e.Drivers[header[i]] = parseFloat(val)
			}
		default:
			e.Attributes[header[i]] = val
		}
	}

	return e
}

// detectNumericColumns 判定数值列
// 某列至少有一个非空单元格且所有非空单元格都能解析为数字时视为数值列；
// 首列（标识）与起飞时间列不参与判定。
func detectNumericColumns(header []string, dataRows [][]string, timeCol int) map[int]bool {
	numeric := make(map[int]bool)

	for i := 1; i < len(header); i++ {
		if i == timeCol || header[i] == "" {
			continue
		}

		seen := false
		ok := true
		for _, row := range dataRows {
			val := getCell(row, i)
			if val == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64); err != nil {
				ok = false
				break
			}
		}

		if seen && ok {
			numeric[i] = true
		}
	}

	return numeric
}

func findSheetByKeyword(sheets []string, keyword, fallback string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword != "" {
		for _, name := range sheets {
			if strings.Contains(strings.ToLower(name), keyword) {
				return name
			}
		}
	}
	return fallback
}

func findExactCol(headers []string, want string) int {
	if want == "" {
		return -1
	}
	for i, h := range headers {
		if strings.TrimSpace(h) == want {
			return i
		}
	}
	return -1
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
