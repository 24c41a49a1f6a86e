package jobshop

// Evaluator считает стоимость решений одной задачи, переиспользуя буферы построителя.
// Не безопасен для одновременного использования из нескольких горутин.
type Evaluator struct {
	prob *Problem
	b    *builder
	// Infeasible — стоимость недопустимого плана: сумма всех длительностей.
	// Любой допустимый makespan не больше этого значения.
	Infeasible int
}

func NewEvaluator(p *Problem) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{prob: p, b: newBuilder(len(p.Jobs)), Infeasible: p.TotalDuration()}, nil
}

// Build строит расписание для решения.
func (e *Evaluator) Build(s *Solution) *Plan {
	return e.b.build(s)
}

// Cost возвращает makespan допустимого плана или Infeasible.
func (e *Evaluator) Cost(pl *Plan) int {
	if !pl.Feasible {
		return e.Infeasible
	}
	return pl.Makespan()
}

// Evaluate — стоимость решения: построение расписания и его makespan.
func (e *Evaluator) Evaluate(s *Solution) int {
	return e.Cost(e.b.build(s))
}

// Less — порядок на стоимостях: равные значения не меньше друг друга,
// любое значение меньше стоимости недопустимого плана справа,
// иначе обычное сравнение чисел.
func (e *Evaluator) Less(a, b int) bool {
	if a == b {
		return false
	}
	if b == e.Infeasible {
		return true
	}
	return a < b
}
