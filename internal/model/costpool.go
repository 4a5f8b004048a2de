package model

// CostPool 成本池：一项活动及其总成本与成本驱动
type CostPool struct {
	Activity  string  `json:"activity"`  // 活动名称（表内唯一）
	Type      string  `json:"type"`      // 活动分类（如 Direct / Indirect）
	TotalCost float64 `json:"totalCost"` // 活动总成本
	Driver    string  `json:"driver"`    // 成本驱动名称，对应事件表中的数值列
}

// RatedCostPool 成本池 + 驱动总量与单位驱动费率
type RatedCostPool struct {
	CostPool
	DriverUnits       float64 `json:"driverUnits"`       // 合计行中该驱动的总量
	RatePerDriverUnit float64 `json:"ratePerDriverUnit"` // TotalCost / DriverUnits；总量为 0 时为 0
}
