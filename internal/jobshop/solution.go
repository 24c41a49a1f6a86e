package jobshop

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"

	"github.com/zeebo/blake3"
)

// Task — операция вместе с номером работы, которой она принадлежит.
// Пара (Job, Op.Index) однозначно определяет операцию в задаче.
type Task struct {
	Job int
	Op  Operation
}

// Move описывает перестановку в очереди станка: элемент из позиции From
// извлекается и вставляется в позицию To.
type Move struct {
	Machine int
	From    int
	To      int
}

// Solution — порядок обработки операций на каждом станке.
//
// Решение неизменяемо: Apply возвращает новое решение, а очереди, которые ход
// не затрагивает, разделяются между родителем и потомком.
type Solution struct {
	queues [][]Task
}

// NewSolution строит решение из готовых очередей (копируя их).
func NewSolution(queues [][]Task) *Solution {
	qs := make([][]Task, len(queues))
	for m, q := range queues {
		qs[m] = slices.Clone(q)
	}
	return &Solution{queues: qs}
}

// GenerateSequential ставит в очереди сначала все операции работы 0, затем работы 1 и т.д.
// Результат всегда допустим.
func GenerateSequential(p *Problem) *Solution {
	queues := make([][]Task, p.Machines)
	for _, job := range p.Jobs {
		for _, op := range job.Ops {
			queues[op.Machine] = append(queues[op.Machine], Task{Job: job.ID, Op: op})
		}
	}
	return &Solution{queues: queues}
}

// GenerateRandom многократно выбирает случайную незавершённую работу и
// добавляет её следующую операцию в очередь соответствующего станка.
// Операции каждой работы попадают в очереди в порядке цепочки, поэтому
// результат всегда допустим.
func GenerateRandom(p *Problem, rng *rand.Rand) *Solution {
	queues := make([][]Task, p.Machines)
	next := make([]int, len(p.Jobs))

	unfinished := make([]int, 0, len(p.Jobs))
	for j, job := range p.Jobs {
		if len(job.Ops) > 0 {
			unfinished = append(unfinished, j)
		}
	}

	for len(unfinished) > 0 {
		k := rng.Intn(len(unfinished))
		j := unfinished[k]
		op := p.Jobs[j].Ops[next[j]]
		queues[op.Machine] = append(queues[op.Machine], Task{Job: j, Op: op})
		next[j]++
		if next[j] == len(p.Jobs[j].Ops) {
			unfinished = slices.Delete(unfinished, k, k+1)
		}
	}
	return &Solution{queues: queues}
}

func (s *Solution) Machines() int { return len(s.queues) }

// Queue возвращает копию очереди станка m.
func (s *Solution) Queue(m int) []Task {
	return slices.Clone(s.queues[m])
}

// Len — число операций в очереди станка m.
func (s *Solution) Len(m int) int { return len(s.queues[m]) }

func (s *Solution) At(m, pos int) Task { return s.queues[m][pos] }

// Apply возвращает новое решение, в котором элемент очереди mv.Machine
// перемещён из позиции From в позицию To. Элементы между ними сдвигаются
// на одну позицию: это перемещение, а не обмен.
func (s *Solution) Apply(mv Move) (*Solution, error) {
	if mv.Machine < 0 || mv.Machine >= len(s.queues) {
		return nil, fmt.Errorf("move machine %d out of range [0,%d)", mv.Machine, len(s.queues))
	}
	n := len(s.queues[mv.Machine])
	if mv.From < 0 || mv.From >= n || mv.To < 0 || mv.To >= n {
		return nil, fmt.Errorf("move %d->%d out of range for queue of length %d on machine %d", mv.From, mv.To, n, mv.Machine)
	}

	queues := slices.Clone(s.queues)
	q := slices.Clone(s.queues[mv.Machine])
	applyInsert(q, mv.From, mv.To)
	queues[mv.Machine] = q
	return &Solution{queues: queues}, nil
}

func (s *Solution) MustApply(mv Move) *Solution {
	next, err := s.Apply(mv)
	if err != nil {
		panic(err)
	}
	return next
}

// applyInsert переносит элемент из позиции from в позицию to на месте.
func applyInsert(q []Task, from, to int) {
	if from == to {
		return
	}
	val := q[from]
	if from < to {
		copy(q[from:to], q[from+1:to+1])
	} else {
		copy(q[to+1:from+1], q[to:from])
	}
	q[to] = val
}

// Validate проверяет, что решение содержит каждую операцию задачи ровно один раз
// и что каждая операция стоит в очереди своего станка.
func (s *Solution) Validate(p *Problem) error {
	if len(s.queues) != p.Machines {
		return fmt.Errorf("solution has %d machine queues (want %d)", len(s.queues), p.Machines)
	}
	seen := make([][]bool, len(p.Jobs))
	for j, job := range p.Jobs {
		seen[j] = make([]bool, len(job.Ops))
	}
	count := 0
	for m, q := range s.queues {
		for pos, t := range q {
			if t.Job < 0 || t.Job >= len(p.Jobs) {
				return fmt.Errorf("machine %d pos %d: job %d out of range", m, pos, t.Job)
			}
			ops := p.Jobs[t.Job].Ops
			if t.Op.Index < 0 || t.Op.Index >= len(ops) || ops[t.Op.Index] != t.Op {
				return fmt.Errorf("machine %d pos %d: unknown operation %+v of job %d", m, pos, t.Op, t.Job)
			}
			if t.Op.Machine != m {
				return fmt.Errorf("machine %d pos %d: operation bound to machine %d", m, pos, t.Op.Machine)
			}
			if seen[t.Job][t.Op.Index] {
				return fmt.Errorf("duplicate operation %d of job %d", t.Op.Index, t.Job)
			}
			seen[t.Job][t.Op.Index] = true
			count++
		}
	}
	if want := p.NumOps(); count != want {
		return fmt.Errorf("solution holds %d operations (want %d)", count, want)
	}
	return nil
}

// Fingerprint возвращает blake3-хеш порядка операций на станках.
// Два решения с одинаковыми очередями имеют одинаковый отпечаток.
func (s *Solution) Fingerprint() string {
	h := blake3.New()
	var buf [binary.MaxVarintLen64]byte
	put := func(v int) {
		n := binary.PutUvarint(buf[:], uint64(v))
		_, _ = h.Write(buf[:n])
	}
	put(len(s.queues))
	for _, q := range s.queues {
		put(len(q))
		for _, t := range q {
			put(t.Job)
			put(t.Op.Index)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
