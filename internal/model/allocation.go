package model

// AllocationRow 单个航班的分摊结果
type AllocationRow struct {
	Flight    string             `json:"flight"`
	Costs     map[string]float64 `json:"costs"`              // 活动 → 分摊成本
	TotalCost float64            `json:"totalCostPerFlight"` // 各活动列之和
}

// AllocationMatrix 航班 × 活动 成本矩阵
// 行顺序与事件表一致（不含合计行），列顺序与成本池表一致。
type AllocationMatrix struct {
	Activities []string         `json:"activities"`
	Rows       []*AllocationRow `json:"rows"`
}

// SummaryRow 单个航班按 Type 汇总后的成本
type SummaryRow struct {
	Flight    string             `json:"flight"`
	TypeCosts map[string]float64 `json:"typeCosts"`          // Type → 该类活动成本合计
	TotalCost float64            `json:"totalCostPerFlight"` // 从分摊矩阵原样带入
}

// Summary 按 Type 汇总表
type Summary struct {
	Types []string      `json:"types"` // Type 首次出现顺序
	Rows  []*SummaryRow `json:"rows"`
}

// UnallocatedCost 无法按驱动分摊的成本（驱动总量为 0 但成本为正）
type UnallocatedCost struct {
	Activity string  `json:"activity"`
	Type     string  `json:"type"`
	Cost     float64 `json:"cost"`
}

// TimePeriod 起飞时段
type TimePeriod string

const (
	TimePeriodMorning   TimePeriod = "Morning"   // [5, 12)
	TimePeriodAfternoon TimePeriod = "Afternoon" // [12, 17)
	TimePeriodEvening   TimePeriod = "Evening"   // [17, 21)
	TimePeriodNight     TimePeriod = "Night"     // 其余小时
	TimePeriodUnknown   TimePeriod = "Unknown"   // 缺失或无法解析
)

// TimePeriods 固定展示顺序
var TimePeriods = []TimePeriod{
	TimePeriodMorning,
	TimePeriodAfternoon,
	TimePeriodEvening,
	TimePeriodNight,
	TimePeriodUnknown,
}
