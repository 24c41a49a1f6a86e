package ts

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Solver — табу-поиск по окрестностям очередей станков.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — основной цикл алгоритма
func (s *Solver) Solve(ctx context.Context, prob *jobshop.Problem) (opt.Result, error) {
	start := time.Now()

	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	eval, err := jobshop.NewEvaluator(prob)
	if err != nil {
		return opt.Result{}, err
	}

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * prob.NumOps()
	}

	curr, err := s.Cfg.InitialMethod.Generate(prob, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	currCost := eval.Evaluate(curr)
	evals := 1

	best := curr
	bestCost := currCost

	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))
	moves := s.Cfg.Neighborhood.Moves(curr)

	result := func(iters int, stopped bool) opt.Result {
		plan := eval.Build(best)
		res := opt.Result{
			Solution:    best,
			Plan:        plan,
			Makespan:    bestCost,
			Feasible:    plan.Feasible,
			Evaluations: evals,
			Iterations:  iters,
			Duration:    time.Since(start),
			Stopped:     stopped,
			Meta: map[string]any{
				"tabu_tenure":        s.Cfg.TabuTenure,
				"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
				"neighbors_per_iter": s.Cfg.NeighborsPerIter,
				"neighborhood":       string(s.Cfg.Neighborhood),
			},
		}
		if stopped {
			res.Meta["stopped"] = "context"
		}
		return res
	}

	if len(moves) == 0 {
		return result(0, false), nil
	}

	for iter := 0; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if ctx.Err() != nil {
			return result(iter, true), nil
		}

		// Лучший допустимый ход и запасной ход без учёта табу
		var bestMove, fallback candidate
		bestMove.cost, fallback.cost = -1, -1

		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			mv := moves[s.Rng.Intn(len(moves))]
			task := curr.At(mv.Machine, mv.From)
			next := curr.MustApply(mv)
			cost := eval.Evaluate(next)
			evals++

			c := candidate{sol: next, cost: cost, key: moveKey(task, mv.From, mv.To), task: task, move: mv}
			if fallback.cost < 0 || eval.Less(cost, fallback.cost) {
				fallback = c
			}

			// Табуированный ход пропускается, если не выполняется критерий аспирации
			if tabu.IsTabu(c.key, iter) && !eval.Less(cost, bestCost) {
				continue
			}
			if bestMove.cost < 0 || eval.Less(cost, bestMove.cost) {
				bestMove = c
			}
		}

		chosen := bestMove
		if chosen.sol == nil {
			chosen = fallback
		}

		curr = chosen.sol
		currCost = chosen.cost
		moves = s.Cfg.Neighborhood.AppendMoves(moves[:0], curr)

		// Запрещаем возврат операции на прежнюю позицию
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosen.task, chosen.move.To, chosen.move.From), iter+tenure)

		if eval.Less(currCost, bestCost) {
			best = curr
			bestCost = currCost
		}
	}

	return result(maxIter, false), nil
}

type candidate struct {
	sol  *jobshop.Solution
	cost int
	key  uint64
	task jobshop.Task
	move jobshop.Move
}

// tabuList — кольцевой буфер фиксированного размера с map для быстрой проверки.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64
	exp []int
	i   int
}

func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add добавляет ход, вытесняя самый старый элемент кольца.
func (t *tabuList) Add(k uint64, expiry int) {
	if old := t.key[t.i]; old != 0 {
		if cur, ok := t.m[old]; ok && cur == t.exp[t.i] {
			delete(t.m, old)
		}
	}
	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry
	t.i = (t.i + 1) % len(t.key)
}

// moveKey кодирует перенос операции task из позиции from в позицию to.
// Единица в старшем бите гарантирует ненулевой ключ.
func moveKey(task jobshop.Task, from, to int) uint64 {
	return 1<<63 |
		uint64(uint16(task.Job))<<48 |
		uint64(uint16(task.Op.Index))<<32 |
		uint64(uint16(from))<<16 |
		uint64(uint16(to))
}
