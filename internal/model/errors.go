package model

import (
	"fmt"
	"strings"
)

// MissingColumnsError 成本池表缺少必需列
// 这是解析阶段唯一的致命错误，出现时不做任何分摊计算。
type MissingColumnsError struct {
	Sheet   string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q missing required columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}
