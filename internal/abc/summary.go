package abc

import (
	"abcost/internal/model"
)

// Summarize 将分摊矩阵按活动 Type 汇总
// Type 列顺序取成本池表中的首次出现顺序；同一 Type 下多个活动的成本相加；
// TotalCost 从矩阵原样带入。成本池为空时输出无 Type 列（允许的退化情形）。
func Summarize(matrix *model.AllocationMatrix, rated []*model.RatedCostPool) *model.Summary {
	types := make([]string, 0)
	byType := make(map[string][]string)
	for _, p := range rated {
		if _, ok := byType[p.Type]; !ok {
			types = append(types, p.Type)
		}
		byType[p.Type] = append(byType[p.Type], p.Activity)
	}

	rows := make([]*model.SummaryRow, 0, len(matrix.Rows))
	for _, r := range matrix.Rows {
		s := &model.SummaryRow{
			Flight:    r.Flight,
			TypeCosts: make(map[string]float64, len(types)),
			TotalCost: r.TotalCost,
		}

		for _, t := range types {
			sum := 0.0
			for _, a := range byType[t] {
				sum += r.Costs[a]
			}
			s.TypeCosts[t] = sum
		}

		rows = append(rows, s)
	}

	return &model.Summary{
		Types: types,
		Rows:  rows,
	}
}
