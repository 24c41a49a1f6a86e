package ts

import (
	"fmt"

	"jobShop/internal/jobshop"
)

type Config struct {
	Iterations      int `yaml:"iterations"`
	IterationsPerOp int `yaml:"iterations_per_op"`

	TabuTenure int `yaml:"tenure"`

	TabuTenureRand int `yaml:"tenure_rand"`

	NeighborsPerIter int `yaml:"neighbors_per_iter"`

	InitialMethod jobshop.InitialMethod `yaml:"initial_method"`
	Neighborhood  jobshop.Neighborhood  `yaml:"neighbor_method"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:      0,
		IterationsPerOp: 20,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 60,

		InitialMethod: jobshop.InitialSequential,
		Neighborhood:  jobshop.NeighborhoodFar,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerOp <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerOp > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return fmt.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
		)
	}
	if err := c.InitialMethod.Validate(); err != nil {
		return err
	}
	return c.Neighborhood.Validate()
}
