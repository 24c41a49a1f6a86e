package sa

import (
	"fmt"

	"jobShop/internal/jobshop"
)

type Config struct {
	// Iterations — число итераций на одном уровне температуры.
	Iterations int `yaml:"iterations"`

	InitialTemp  float64 `yaml:"initial_temperature"`
	FrozenTemp   float64 `yaml:"frozen_temperature"`
	CoolingRatio float64 `yaml:"cooling_ratio"`

	InitialMethod jobshop.InitialMethod `yaml:"initial_method"`
	Neighborhood  jobshop.Neighborhood  `yaml:"neighbor_method"`
}

func DefaultConfig() Config {
	return Config{
		Iterations: 2000,

		InitialTemp:  1.0,
		FrozenTemp:   0.1,
		CoolingRatio: 0.01,

		InitialMethod: jobshop.InitialSequential,
		Neighborhood:  jobshop.NeighborhoodFar,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf(
			"Iterations должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.InitialTemp <= 0 {
		return fmt.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FrozenTemp <= 0 {
		return fmt.Errorf(
			"FrozenTemp должно быть > 0 (получено %f)",
			c.FrozenTemp,
		)
	}
	if c.FrozenTemp >= c.InitialTemp {
		return fmt.Errorf(
			"FrozenTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FrozenTemp,
			c.InitialTemp,
		)
	}
	if c.CoolingRatio <= 0 {
		return fmt.Errorf(
			"CoolingRatio должно быть > 0 (получено %f)",
			c.CoolingRatio,
		)
	}
	if err := c.InitialMethod.Validate(); err != nil {
		return err
	}
	return c.Neighborhood.Validate()
}

// Levels — число уровней температуры до замерзания.
func (c Config) Levels() int {
	n := 0
	for t := c.InitialTemp; t > c.FrozenTemp; t = c.temperature(n) {
		n++
	}
	return n
}
