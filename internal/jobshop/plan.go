package jobshop

import "fmt"

// Slot — операция, назначенная на станок с конкретным временем начала.
type Slot struct {
	Start int
	Task
}

func (sl Slot) End() int { return sl.Start + sl.Op.Duration }

// Plan — расписание, построенное из решения.
//
// Если порядок на станках противоречит порядку операций в работах (цикл
// зависимостей), план недопустим: Feasible == false и Machines == nil.
type Plan struct {
	Machines [][]Slot
	Feasible bool
	// Passes — число проходов по станкам, на которых удалось назначить хотя бы одну операцию.
	// Завершающий проход без назначений не учитывается, поэтому Passes <= NumOps().
	Passes int
}

// Build строит расписание для решения s задачи p.
func Build(p *Problem, s *Solution) *Plan {
	return newBuilder(len(p.Jobs)).build(s)
}

type builder struct {
	next  []int // индекс следующей операции работы
	ready []int // момент, раньше которого следующая операция работы начаться не может
}

func newBuilder(jobs int) *builder {
	return &builder{next: make([]int, jobs), ready: make([]int, jobs)}
}

// build выполняет распространение ограничений до неподвижной точки: на каждом
// проходе для каждого станка продолжаем с первой ещё не назначенной операции и
// назначаем операции, пока очередная из них является следующей в своей работе.
func (b *builder) build(s *Solution) *Plan {
	for j := range b.next {
		b.next[j] = 0
		b.ready[j] = 0
	}

	rows := make([][]Slot, len(s.queues))
	for m, q := range s.queues {
		rows[m] = make([]Slot, 0, len(q))
	}

	passes := 0
	for {
		changed := false
		for m, q := range s.queues {
			row := rows[m]
			for len(row) < len(q) {
				t := q[len(row)]
				if t.Op.Index != b.next[t.Job] {
					// Предыдущая операция работы ещё ждёт на другом станке.
					break
				}
				start := b.ready[t.Job]
				if n := len(row); n > 0 && row[n-1].End() > start {
					start = row[n-1].End()
				}
				row = append(row, Slot{Start: start, Task: t})
				b.next[t.Job] = t.Op.Index + 1
				b.ready[t.Job] = start + t.Op.Duration
				changed = true
			}
			rows[m] = row
		}
		if !changed {
			break
		}
		passes++
	}

	for m, q := range s.queues {
		if len(rows[m]) != len(q) {
			return &Plan{Feasible: false, Passes: passes}
		}
	}
	return &Plan{Machines: rows, Feasible: true, Passes: passes}
}

// Makespan — момент завершения последней операции. Для недопустимого плана 0.
func (pl *Plan) Makespan() int {
	ms := 0
	for _, row := range pl.Machines {
		if n := len(row); n > 0 && row[n-1].End() > ms {
			ms = row[n-1].End()
		}
	}
	return ms
}

// HasCollisions сообщает, пересекаются ли операции на каком-либо станке.
func (pl *Plan) HasCollisions() bool {
	for _, row := range pl.Machines {
		last := 0
		for _, sl := range row {
			if sl.Start < last {
				return true
			}
			last = sl.End()
		}
	}
	return false
}

// Validate проверяет оба ограничения для допустимого плана: станок обрабатывает
// одну операцию за раз, и операция работы начинается не раньше окончания предыдущей.
func (pl *Plan) Validate(p *Problem) error {
	if !pl.Feasible {
		return fmt.Errorf("plan is infeasible")
	}
	if pl.HasCollisions() {
		return fmt.Errorf("plan has overlapping operations on a machine")
	}
	ends := make([][]int, len(p.Jobs))
	for j, job := range p.Jobs {
		ends[j] = make([]int, len(job.Ops))
		for i := range ends[j] {
			ends[j][i] = -1
		}
	}
	starts := make([][]int, len(p.Jobs))
	for j, job := range p.Jobs {
		starts[j] = make([]int, len(job.Ops))
	}
	for _, row := range pl.Machines {
		for _, sl := range row {
			ends[sl.Job][sl.Op.Index] = sl.End()
			starts[sl.Job][sl.Op.Index] = sl.Start
		}
	}
	for j := range ends {
		for i := range ends[j] {
			if ends[j][i] < 0 {
				return fmt.Errorf("job %d op %d is not scheduled", j, i)
			}
			if i > 0 && starts[j][i] < ends[j][i-1] {
				return fmt.Errorf("job %d op %d starts at %d before op %d ends at %d", j, i, starts[j][i], i-1, ends[j][i-1])
			}
		}
	}
	return nil
}
