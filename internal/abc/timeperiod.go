package abc

import (
	"strings"
	"time"

	"abcost/internal/model"
)

// departureLayouts 起飞时间的候选格式
// excelize 返回的是按单元格样式渲染后的字符串，常见日期时间样式都在这里兜底。
var departureLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

// ClassifyDeparture 将起飞时间串映射到时段
// 空值或所有格式都解析失败时返回 Unknown，不报错。
func ClassifyDeparture(raw string) model.TimePeriod {
	t, ok := parseDeparture(raw)
	if !ok {
		return model.TimePeriodUnknown
	}
	return ClassifyHour(t.Hour())
}

// ClassifyHour 按小时划分时段
// 区间左闭右开：[5,12) Morning、[12,17) Afternoon、[17,21) Evening，其余 Night。
func ClassifyHour(hour int) model.TimePeriod {
	switch {
	case hour >= 5 && hour < 12:
		return model.TimePeriodMorning
	case hour >= 12 && hour < 17:
		return model.TimePeriodAfternoon
	case hour >= 17 && hour < 21:
		return model.TimePeriodEvening
	default:
		return model.TimePeriodNight
	}
}

// parseDeparture 逐个尝试候选格式
// 不做任何时区归一化，小时按解析结果原样使用。
func parseDeparture(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
