package jobshop

import (
	"errors"
	"fmt"
)

// ErrInvalidProblem возвращается при нарушении инвариантов задачи.
var ErrInvalidProblem = errors.New("invalid problem")

// Operation — одна операция работы: станок, длительность и позиция в цепочке работы.
type Operation struct {
	Machine  int
	Duration int
	Index    int
}

// Job — упорядоченная цепочка операций с устойчивым номером.
type Job struct {
	ID  int
	Ops []Operation
}

// Problem — неизменяемое описание задачи job-shop.
type Problem struct {
	Machines int
	Jobs     []Job
}

// Step — пара (станок, длительность) во входных данных.
type Step struct {
	Machine  int
	Duration int
}

// NewProblem строит задачу из маршрутов работ. Индексы операций и номера работ
// назначаются по порядку.
func NewProblem(machines int, routes [][]Step) (*Problem, error) {
	p := &Problem{Machines: machines, Jobs: make([]Job, len(routes))}
	for j, route := range routes {
		ops := make([]Operation, len(route))
		for i, st := range route {
			ops[i] = Operation{Machine: st.Machine, Duration: st.Duration, Index: i}
		}
		p.Jobs[j] = Job{ID: j, Ops: ops}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: problem is nil", ErrInvalidProblem)
	}
	if p.Machines <= 0 {
		return fmt.Errorf("%w: machines must be > 0 (got %d)", ErrInvalidProblem, p.Machines)
	}
	if len(p.Jobs) == 0 {
		return fmt.Errorf("%w: at least one job is required", ErrInvalidProblem)
	}
	for j, job := range p.Jobs {
		if job.ID != j {
			return fmt.Errorf("%w: job %d has id %d", ErrInvalidProblem, j, job.ID)
		}
		for i, op := range job.Ops {
			if op.Machine < 0 || op.Machine >= p.Machines {
				return fmt.Errorf("%w: job %d op %d: machine %d out of range [0,%d)", ErrInvalidProblem, j, i, op.Machine, p.Machines)
			}
			if op.Duration < 0 {
				return fmt.Errorf("%w: job %d op %d: duration must be >= 0 (got %d)", ErrInvalidProblem, j, i, op.Duration)
			}
			if op.Index != i {
				return fmt.Errorf("%w: job %d op %d: index %d", ErrInvalidProblem, j, i, op.Index)
			}
		}
	}
	return nil
}

func (p *Problem) NumJobs() int { return len(p.Jobs) }

// NumOps возвращает общее число операций во всех работах.
func (p *Problem) NumOps() int {
	n := 0
	for _, job := range p.Jobs {
		n += len(job.Ops)
	}
	return n
}

// TotalDuration — сумма длительностей всех операций.
// Это тривиальная верхняя граница makespan любого допустимого расписания.
func (p *Problem) TotalDuration() int {
	total := 0
	for _, job := range p.Jobs {
		for _, op := range job.Ops {
			total += op.Duration
		}
	}
	return total
}
