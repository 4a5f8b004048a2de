package abc

import (
	"strings"

	"abcost/internal/model"
)

// Allocate 计算 航班 × 活动 成本矩阵
// 每个单元格 = 航班对该活动驱动的消耗量 × 单位驱动费率；
// 航班缺少对应驱动列时消耗量按 0 计。
// 行顺序与事件表一致，列顺序与成本池表一致，结果只取决于输入。
func Allocate(flights []*model.FlightEvent, rated []*model.RatedCostPool) *model.AllocationMatrix {
	activities := make([]string, 0, len(rated))
	for _, p := range rated {
		activities = append(activities, p.Activity)
	}

	rows := make([]*model.AllocationRow, 0, len(flights))
	for _, f := range flights {
		row := &model.AllocationRow{
			Flight: f.Flight,
			Costs:  make(map[string]float64, len(rated)),
		}

		for _, p := range rated {
			consumption := f.Drivers[strings.TrimSpace(p.Driver)]
			cost := consumption * p.RatePerDriverUnit
			row.Costs[p.Activity] = cost
			row.TotalCost += cost
		}

		rows = append(rows, row)
	}

	return &model.AllocationMatrix{
		Activities: activities,
		Rows:       rows,
	}
}
