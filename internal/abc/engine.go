package abc

import (
	"abcost/internal/model"
)

// Result 一次完整分摊计算的输出
// 所有表都在返回前计算完毕，返回后不再被引擎修改。
type Result struct {
	RatedPools  []*model.RatedCostPool      `json:"ratedPools"`
	Matrix      *model.AllocationMatrix     `json:"matrix"`
	Summary     *model.Summary              `json:"summary"`
	Periods     map[string]model.TimePeriod `json:"periods"`     // 航班 → 起飞时段
	Unallocated []model.UnallocatedCost     `json:"unallocated"` // 驱动总量为 0 的正成本池
}

// Run 执行完整的 ABC 分摊管线
// (成本池表, 事件表) 的纯函数：同样的输入必然产出同样的结果。
// 费率表先算一次，分摊阶段按活动查表，不逐航班重复推导。
func Run(pools []model.CostPool, events *model.EventTable) *Result {
	if events == nil {
		events = &model.EventTable{}
	}

	units := NewDriverUnitsIndex(events.Totals)
	rated := RatePools(pools, units)
	matrix := Allocate(events.Flights, rated)
	summary := Summarize(matrix, rated)

	periods := make(map[string]model.TimePeriod, len(events.Flights))
	for _, f := range events.Flights {
		periods[f.Flight] = ClassifyDeparture(f.DepartureTime)
	}

	unallocated := make([]model.UnallocatedCost, 0)
	for _, p := range rated {
		if p.DriverUnits == 0 && p.TotalCost > 0 {
			unallocated = append(unallocated, model.UnallocatedCost{
				Activity: p.Activity,
				Type:     p.Type,
				Cost:     p.TotalCost,
			})
		}
	}

	return &Result{
		RatedPools:  rated,
		Matrix:      matrix,
		Summary:     summary,
		Periods:     periods,
		Unallocated: unallocated,
	}
}
