// Package config загружает параметры запуска из YAML-файла.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jobShop/internal/sa"
	"jobShop/internal/ts"
)

// Bench — параметры серийного прогона.
type Bench struct {
	Runs          int           `yaml:"runs"`
	BaseSeed      int64         `yaml:"base_seed"`
	PerRunTimeout time.Duration `yaml:"per_run_timeout"`
	Algos         []string      `yaml:"algos"`
	Out           string        `yaml:"out"`
}

func DefaultBench() Bench {
	return Bench{
		Runs:     10,
		BaseSeed: 1000,
		Algos:    []string{"SA", "TS"},
		Out:      "artifacts/results.csv",
	}
}

func (b Bench) Validate() error {
	if b.Runs <= 0 {
		return fmt.Errorf("runs должно быть > 0 (получено %d)", b.Runs)
	}
	if b.PerRunTimeout < 0 {
		return fmt.Errorf("per_run_timeout должно быть >= 0 (получено %s)", b.PerRunTimeout)
	}
	if len(b.Algos) == 0 {
		return errors.New("algos: нужен хотя бы один алгоритм")
	}
	return nil
}

// Config — содержимое файла конфигурации.
type Config struct {
	Anneal sa.Config `yaml:"anneal"`
	Tabu   ts.Config `yaml:"tabu"`
	Bench  Bench     `yaml:"bench"`
}

func Default() Config {
	return Config{
		Anneal: sa.DefaultConfig(),
		Tabu:   ts.DefaultConfig(),
		Bench:  DefaultBench(),
	}
}

func (c Config) Validate() error {
	if err := c.Anneal.Validate(); err != nil {
		return fmt.Errorf("anneal: %w", err)
	}
	if err := c.Tabu.Validate(); err != nil {
		return fmt.Errorf("tabu: %w", err)
	}
	if err := c.Bench.Validate(); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	return nil
}

// Parse декодирует YAML поверх значений по умолчанию. Неизвестные поля — ошибка.
// Пустой документ даёт конфигурацию по умолчанию.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load читает файл конфигурации. Пустой путь означает конфигурацию по умолчанию.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}
