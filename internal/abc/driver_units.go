package abc

import (
	"math"
	"strings"

	"abcost/internal/model"
)

// DriverUnitsIndex 驱动总量索引：驱动名（去空白）→ 合计行中的总量
// 构建后只读，由分摊各步骤显式传入。
type DriverUnitsIndex struct {
	units map[string]float64
}

// NewDriverUnitsIndex 从事件表合计行构建索引
// 只收数值列；NaN 视为缺失，不入索引。
func NewDriverUnitsIndex(totals *model.FlightEvent) *DriverUnitsIndex {
	idx := &DriverUnitsIndex{
		units: make(map[string]float64),
	}
	if totals == nil {
		return idx
	}

	for name, v := range totals.Drivers {
		key := strings.TrimSpace(name)
		if key == "" || math.IsNaN(v) {
			continue
		}
		idx.units[key] = v
	}

	return idx
}

// Lookup 查询驱动总量
// 驱动名为空或不在索引中时返回 0：缺失映射按"完全不分摊"处理，而不是报错。
func (idx *DriverUnitsIndex) Lookup(driver string) float64 {
	key := strings.TrimSpace(driver)
	if key == "" {
		return 0
	}
	return idx.units[key]
}

// Len 索引中的驱动数量
func (idx *DriverUnitsIndex) Len() int {
	return len(idx.units)
}
