package analytics

import (
	"sort"

	"abcost/internal/model"
)

// 事件表中约定的分类列名
const (
	ContinentColumn   = "Continent"
	DestinationColumn = "Destination Code"
)

// FilterAll 下拉选项中的"不过滤"取值
const FilterAll = "All"

// FlightView 航班可视化行：事件属性 + 起飞时段 + 单航班总成本
type FlightView struct {
	Flight        string            `json:"flight"`
	Continent     string            `json:"continent"`
	Destination   string            `json:"destination"`
	DepartureTime string            `json:"departureTime"`
	TimePeriod    model.TimePeriod  `json:"timePeriod"`
	Attributes    map[string]string `json:"attributes"`
	TotalCost     float64           `json:"totalCostPerFlight"`
}

// BuildFlightViews 按航班标识将事件表、汇总表与时段分类连接成可视化行
// 汇总表中找不到的航班成本记 0（左连接语义）。
func BuildFlightViews(events *model.EventTable, summary *model.Summary, periods map[string]model.TimePeriod) []*FlightView {
	if events == nil {
		return []*FlightView{}
	}

	totals := make(map[string]float64)
	if summary != nil {
		for _, r := range summary.Rows {
			totals[r.Flight] = r.TotalCost
		}
	}

	views := make([]*FlightView, 0, len(events.Flights))
	for _, f := range events.Flights {
		period, ok := periods[f.Flight]
		if !ok {
			period = model.TimePeriodUnknown
		}
		views = append(views, &FlightView{
			Flight:        f.Flight,
			Continent:     f.Attributes[ContinentColumn],
			Destination:   f.Attributes[DestinationColumn],
			DepartureTime: f.DepartureTime,
			TimePeriod:    period,
			Attributes:    f.Attributes,
			TotalCost:     totals[f.Flight],
		})
	}

	return views
}

// Filter 行过滤条件；空串或 "All" 表示该维度不过滤
type Filter struct {
	Continent   string `json:"continent"`
	Destination string `json:"destination"`
	TimePeriod  string `json:"timePeriod"`
}

// Match 判断单行是否通过过滤
func (f Filter) Match(v *FlightView) bool {
	if !matchField(f.Continent, v.Continent) {
		return false
	}
	if !matchField(f.Destination, v.Destination) {
		return false
	}
	if !matchField(f.TimePeriod, string(v.TimePeriod)) {
		return false
	}
	return true
}

// ApplyFilter 过滤可视化行，保持原顺序
func ApplyFilter(views []*FlightView, f Filter) []*FlightView {
	out := make([]*FlightView, 0, len(views))
	for _, v := range views {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// FilterOptions 过滤下拉选项
type FilterOptions struct {
	Continents   []string `json:"continents"`
	Destinations []string `json:"destinations"`
	TimePeriods  []string `json:"timePeriods"`
}

// BuildFilterOptions 收集排序去重后的下拉选项
// 大洲与目的地取实际出现的非空值；时段固定为全部五档。
func BuildFilterOptions(views []*FlightView) FilterOptions {
	opts := FilterOptions{
		Continents:   distinctSorted(views, func(v *FlightView) string { return v.Continent }),
		Destinations: distinctSorted(views, func(v *FlightView) string { return v.Destination }),
	}
	for _, p := range model.TimePeriods {
		opts.TimePeriods = append(opts.TimePeriods, string(p))
	}
	return opts
}

func matchField(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

func distinctSorted(views []*FlightView, key func(*FlightView) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, v := range views {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
