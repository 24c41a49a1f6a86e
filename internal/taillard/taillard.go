// Package taillard воспроизводит генератор эталонных задач job-shop Тайяра.
//
// Генератор детерминирован: пара сидов и размеры задачи однозначно задают
// длительности и маршруты, поэтому экземпляры ta01..ta80 не нужно хранить файлами.
package taillard

import (
	"fmt"

	"jobShop/internal/jobshop"
)

// Параметры генератора Лемера (Park–Miller) с разложением Шраге.
const (
	modulus    = 2147483647
	multiplier = 16807
	schrageQ   = 127773
	schrageR   = 2836
)

const (
	minDuration = 1
	maxDuration = 99
)

// lehmer — генератор Лемера, состояние которого задаётся сидом из таблицы Тайяра.
type lehmer struct {
	seed int64
}

// unif возвращает равномерное целое на [low, high].
func (g *lehmer) unif(low, high int) int {
	k := g.seed / schrageQ
	g.seed = multiplier*(g.seed%schrageQ) - k*schrageR
	if g.seed < 0 {
		g.seed += modulus
	}
	v := float64(g.seed) / modulus
	return low + int(v*float64(high-low+1))
}

// Matrices — сырые данные экземпляра: длительности и маршруты (номера станков с единицы),
// по строке на работу.
type Matrices struct {
	Durations [][]int
	Machines  [][]int
}

// GenerateMatrices строит матрицы экземпляра по сидам Тайяра.
func GenerateMatrices(timeSeed, machineSeed int64, jobs, machines int) (Matrices, error) {
	if jobs <= 0 || machines <= 0 {
		return Matrices{}, fmt.Errorf("taillard: jobs and machines must be > 0 (got %dx%d)", jobs, machines)
	}
	if timeSeed <= 0 || timeSeed >= modulus || machineSeed <= 0 || machineSeed >= modulus {
		return Matrices{}, fmt.Errorf("taillard: seeds must be in (0, %d)", modulus)
	}

	tg := &lehmer{seed: timeSeed}
	durations := make([][]int, jobs)
	for i := range durations {
		durations[i] = make([]int, machines)
		for j := range durations[i] {
			durations[i][j] = tg.unif(minDuration, maxDuration)
		}
	}

	mg := &lehmer{seed: machineSeed}
	order := make([][]int, jobs)
	for i := range order {
		order[i] = make([]int, machines)
		for j := range order[i] {
			order[i][j] = j + 1
		}
	}
	for i := range order {
		for j := range order[i] {
			u := mg.unif(j, machines-1)
			order[i][j], order[i][u] = order[i][u], order[i][j]
		}
	}

	return Matrices{Durations: durations, Machines: order}, nil
}

// Generate строит задачу по сидам Тайяра. Станки в задаче нумеруются с нуля.
func Generate(timeSeed, machineSeed int64, jobs, machines int) (*jobshop.Problem, error) {
	mx, err := GenerateMatrices(timeSeed, machineSeed, jobs, machines)
	if err != nil {
		return nil, err
	}
	return mx.Problem()
}

// Problem переводит матрицы в задачу job-shop.
func (mx Matrices) Problem() (*jobshop.Problem, error) {
	routes := make([][]jobshop.Step, len(mx.Durations))
	machines := 0
	for i, row := range mx.Durations {
		if len(mx.Machines[i]) != len(row) {
			return nil, fmt.Errorf("taillard: job %d has %d durations and %d machines", i, len(row), len(mx.Machines[i]))
		}
		machines = max(machines, len(row))
		routes[i] = make([]jobshop.Step, len(row))
		for j, d := range row {
			routes[i][j] = jobshop.Step{Machine: mx.Machines[i][j] - 1, Duration: d}
		}
	}
	return jobshop.NewProblem(machines, routes)
}
