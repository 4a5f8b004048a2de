package abc

import (
	"abcost/internal/model"
)

// RatePools 为每个成本池计算单位驱动费率
// 驱动总量为 0 时费率取 0：既不抛除零错误，也不当作无穷费率，
// 该活动的成本在逐航班分摊中自然消失（由 Run 以 Unallocated 诊断暴露）。
func RatePools(pools []model.CostPool, units *DriverUnitsIndex) []*model.RatedCostPool {
	rated := make([]*model.RatedCostPool, 0, len(pools))

	for _, p := range pools {
		du := units.Lookup(p.Driver)

		rate := 0.0
		if du != 0 {
			rate = p.TotalCost / du
		}

		rated = append(rated, &model.RatedCostPool{
			CostPool:          p,
			DriverUnits:       du,
			RatePerDriverUnit: rate,
		})
	}

	return rated
}
