package analytics

import (
	"sort"

	"abcost/internal/model"
)

// KPI 过滤结果集上的汇总指标
type KPI struct {
	Flights     int     `json:"flights"`     // 航班数
	TotalCost   float64 `json:"totalCost"`   // 总成本
	AverageCost float64 `json:"averageCost"` // 单航班平均成本
	MaxCost     float64 `json:"maxCost"`     // 最高单航班成本
}

// ComputeKPI 计算看板顶部指标
func ComputeKPI(views []*FlightView) KPI {
	kpi := KPI{Flights: len(views)}
	for _, v := range views {
		kpi.TotalCost += v.TotalCost
		if v.TotalCost > kpi.MaxCost {
			kpi.MaxCost = v.TotalCost
		}
	}
	if kpi.Flights > 0 {
		kpi.AverageCost = kpi.TotalCost / float64(kpi.Flights)
	}
	return kpi
}

// GroupTotal 分组合计行
type GroupTotal struct {
	Key       string  `json:"key"`
	TotalCost float64 `json:"totalCost"`
}

// CostByTimePeriod 按起飞时段合计总成本，固定时段顺序，只输出出现过的分组
func CostByTimePeriod(views []*FlightView) []GroupTotal {
	sums := make(map[model.TimePeriod]float64)
	for _, v := range views {
		sums[v.TimePeriod] += v.TotalCost
	}

	out := make([]GroupTotal, 0, len(sums))
	for _, p := range model.TimePeriods {
		if _, ok := sums[p]; ok {
			out = append(out, GroupTotal{Key: string(p), TotalCost: sums[p]})
		}
	}
	return out
}

// CostByDestination 按目的地代码合计总成本，按成本倒序取前 limit 个
func CostByDestination(views []*FlightView, limit int) []GroupTotal {
	out := groupBy(views, func(v *FlightView) string { return v.Destination })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCost > out[j].TotalCost
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CostByContinent 按大洲合计总成本，按名称排序
func CostByContinent(views []*FlightView) []GroupTotal {
	out := groupBy(views, func(v *FlightView) string { return v.Continent })
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// FlightCost 单航班按 Type 拆分的成本
type FlightCost struct {
	Flight    string             `json:"flight"`
	TypeCosts map[string]float64 `json:"typeCosts"`
	TotalCost float64            `json:"totalCostPerFlight"`
}

// TopFlights 过滤集内按总成本倒序取前 n 个航班（堆叠柱状图数据）
// included 为空时不限定航班集合。
func TopFlights(summary *model.Summary, included map[string]bool, n int) []*FlightCost {
	if summary == nil {
		return []*FlightCost{}
	}

	out := make([]*FlightCost, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		if included != nil && !included[r.Flight] {
			continue
		}
		out = append(out, &FlightCost{
			Flight:    r.Flight,
			TypeCosts: r.TypeCosts,
			TotalCost: r.TotalCost,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCost > out[j].TotalCost
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TypeBreakdown 单航班成本按 Type 的占比拆分（饼图数据），按 Type 顺序输出
func TypeBreakdown(fc *FlightCost, types []string) []GroupTotal {
	if fc == nil {
		return []GroupTotal{}
	}
	out := make([]GroupTotal, 0, len(types))
	for _, t := range types {
		out = append(out, GroupTotal{Key: t, TotalCost: fc.TypeCosts[t]})
	}
	return out
}

// IncludedFlights 过滤后可视化行对应的航班集合
func IncludedFlights(views []*FlightView) map[string]bool {
	included := make(map[string]bool, len(views))
	for _, v := range views {
		included[v.Flight] = true
	}
	return included
}

func groupBy(views []*FlightView, key func(*FlightView) string) []GroupTotal {
	sums := make(map[string]float64)
	order := make([]string, 0)
	for _, v := range views {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += v.TotalCost
	}

	out := make([]GroupTotal, 0, len(order))
	for _, k := range order {
		out = append(out, GroupTotal{Key: k, TotalCost: sums[k]})
	}
	return out
}
