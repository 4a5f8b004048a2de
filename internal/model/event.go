package model

// FlightEvent 事件表中的一行：一个航班（或合计行）
type FlightEvent struct {
	Flight        string             `json:"flight"`        // 首列标识
	RowNo         int                `json:"rowNo"`         // 源表行号（从 2 开始，表头为 1）
	Drivers       map[string]float64 `json:"drivers"`       // 数值列 → 驱动消耗量（空单元格不入 map）
	Attributes    map[string]string  `json:"attributes"`    // 分类列 → 原始取值（Continent、Destination Code 等）
	DepartureTime string             `json:"departureTime"` // 起飞时间原始串，可能为空
}

// EventTable 解析后的事件表
// 合计行与标识列在解析阶段显式拆出，下游不再依赖位置约定。
type EventTable struct {
	IDColumn        string         `json:"idColumn"`        // 首列列名
	TimeColumn      string         `json:"timeColumn"`      // 起飞时间列名（未找到时为空）
	NumericColumns  []string       `json:"numericColumns"`  // 数值列（按表头顺序）
	CategoryColumns []string       `json:"categoryColumns"` // 分类列（按表头顺序）
	Flights         []*FlightEvent `json:"flights"`         // 不含合计行
	Totals          *FlightEvent   `json:"totals"`          // 末行合计记录

	// 原始表内容（含合计行），导出 Events sheet 时原样回写
	Header  []string   `json:"-"`
	RawRows [][]string `json:"-"`
}

// SheetInfo 工作表信息
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}
