package jobshop

import (
	"fmt"
	"math/rand"
)

// Тип окрестности
type Neighborhood string

const (
	// NeighborhoodNear — перемещение на соседнюю позицию (a -> a+1).
	NeighborhoodNear Neighborhood = "near"
	// NeighborhoodFar — перемещение между любыми двумя различными позициями.
	NeighborhoodFar Neighborhood = "far"
)

func (n Neighborhood) Validate() error {
	switch n {
	case NeighborhoodNear, NeighborhoodFar:
		return nil
	default:
		return fmt.Errorf("неизвестный тип окрестности %q", n)
	}
}

// AppendMoves дописывает в dst все ходы окрестности для решения s.
// Допустимость получающихся решений не проверяется: недопустимость
// обнаружит построитель расписания.
func (n Neighborhood) AppendMoves(dst []Move, s *Solution) []Move {
	for m, q := range s.queues {
		k := len(q)
		switch n {
		case NeighborhoodNear:
			for a := 0; a+1 < k; a++ {
				dst = append(dst, Move{Machine: m, From: a, To: a + 1})
			}
		case NeighborhoodFar:
			for a := 0; a < k; a++ {
				for b := 0; b < k; b++ {
					if a != b {
						dst = append(dst, Move{Machine: m, From: a, To: b})
					}
				}
			}
		}
	}
	return dst
}

func (n Neighborhood) Moves(s *Solution) []Move {
	return n.AppendMoves(nil, s)
}

// Способ построения начального решения
type InitialMethod string

const (
	InitialSequential InitialMethod = "sequential"
	InitialRandom     InitialMethod = "random"
)

func (im InitialMethod) Validate() error {
	switch im {
	case InitialSequential, InitialRandom:
		return nil
	default:
		return fmt.Errorf("неизвестный способ построения начального решения %q", im)
	}
}

// Generate строит начальное решение выбранным способом.
func (im InitialMethod) Generate(p *Problem, rng *rand.Rand) (*Solution, error) {
	switch im {
	case InitialSequential:
		return GenerateSequential(p), nil
	case InitialRandom:
		if rng == nil {
			return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
		}
		return GenerateRandom(p, rng), nil
	default:
		return nil, im.Validate()
	}
}
