package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Progress — состояние поиска после завершения уровня температуры.
type Progress struct {
	Level       int
	Temperature float64
	CurrentCost int
	BestCost    int
	// Accepted — число принятых ходов на уровне.
	Accepted    int
	Evaluations int
}

// Hook вызывается после каждого уровня температуры.
type Hook func(Progress)

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg  Config
	Rng  *rand.Rand
	Hook Hook
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve строит начальное решение способом из конфигурации и запускает отжиг.
func (s *Solver) Solve(ctx context.Context, prob *jobshop.Problem) (opt.Result, error) {
	if err := prob.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.check(); err != nil {
		return opt.Result{}, err
	}
	initial, err := s.Cfg.InitialMethod.Generate(prob, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	return s.Anneal(ctx, prob, initial)
}

// Anneal запускает отжиг из заданного начального решения.
// Отмена ctx не считается ошибкой: возвращается лучшее найденное решение
// с Result.Stopped == true.
func (s *Solver) Anneal(ctx context.Context, prob *jobshop.Problem, initial *jobshop.Solution) (opt.Result, error) {
	start := time.Now()

	if err := s.check(); err != nil {
		return opt.Result{}, err
	}
	eval, err := jobshop.NewEvaluator(prob)
	if err != nil {
		return opt.Result{}, err
	}
	if err := initial.Validate(prob); err != nil {
		return opt.Result{}, fmt.Errorf("initial solution: %w", err)
	}

	curr := initial
	currCost := eval.Evaluate(curr)
	best := curr
	bestCost := currCost
	evals := 1
	iters := 0

	moves := s.Cfg.Neighborhood.AppendMoves(nil, curr)

	finish := func(stopped bool, T float64, level int) opt.Result {
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
				"initial_temp":   s.Cfg.InitialTemp,
				"frozen_temp":    s.Cfg.FrozenTemp,
				"cooling_ratio":  s.Cfg.CoolingRatio,
				"neighborhood":   string(s.Cfg.Neighborhood),
				"initial_method": string(s.Cfg.InitialMethod),
				"levels":         level,
			},
		}
		if stopped {
			res.Meta["stopped"] = "context"
			res.Meta["T"] = T
		}
		return res
	}

	// Ходов нет: на каждом станке не больше одной операции.
	if len(moves) == 0 {
		return finish(false, s.Cfg.InitialTemp, 0), nil
	}

	T := s.Cfg.InitialTemp
	level := 0
	for T > s.Cfg.FrozenTemp {
		accepted := 0
		for i := 0; i < s.Cfg.Iterations; i++ {
			// Для поддержки отмены через context
			if ctx.Err() != nil {
				return finish(true, T, level), nil
			}

			mv := moves[s.Rng.Intn(len(moves))]
			cand := curr.MustApply(mv)
			candCost := eval.Evaluate(cand)
			// Стоимость текущего решения пересчитывается на каждом шаге.
			currCost = eval.Evaluate(curr)
			evals += 2
			iters++

			// Снимок лучшего решения делается до хода.
			if eval.Less(currCost, bestCost) {
				best = curr
				bestCost = currCost
			}

			if s.accept(eval, candCost, currCost, T) {
				curr = cand
				currCost = candCost
				moves = s.Cfg.Neighborhood.AppendMoves(moves[:0], curr)
				accepted++
			}
		}

		level++
		// Охлаждение температуры
		T = s.Cfg.temperature(level)

		if s.Hook != nil {
			s.Hook(Progress{
				Level:       level,
				Temperature: T,
				CurrentCost: currCost,
				BestCost:    bestCost,
				Accepted:    accepted,
				Evaluations: evals,
			})
		}
	}

	// Последний принятый ход мог улучшить рекорд.
	if eval.Less(currCost, bestCost) {
		best = curr
		bestCost = currCost
	}
	return finish(false, T, level), nil
}

// accept — критерий Метрополиса. Улучшение принимается всегда, ухудшение
// с вероятностью exp(-delta/T); переполнение экспоненты означает принятие.
func (s *Solver) accept(eval *jobshop.Evaluator, candCost, currCost int, T float64) bool {
	if eval.Less(candCost, currCost) {
		return true
	}
	return metropolis(candCost-currCost, T, s.Rng)
}

func metropolis(delta int, T float64, rng *rand.Rand) bool {
	p := math.Exp(-float64(delta) / T)
	if math.IsInf(p, 1) || math.IsNaN(p) {
		return true
	}
	return rng.Float64() < p
}

func (s *Solver) check() error {
	if err := s.Cfg.Validate(); err != nil {
		return err
	}
	if s.Rng == nil {
		return fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return nil
}

// temperature — температура после level уровней: T0 * exp(-level * ratio).
func (c Config) temperature(level int) float64 {
	return c.InitialTemp * math.Exp(-float64(level)*c.CoolingRatio)
}
