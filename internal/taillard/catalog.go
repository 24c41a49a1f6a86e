package taillard

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"jobShop/internal/jobshop"
)

// Seeds — параметры одного экземпляра из таблицы Тайяра.
type Seeds struct {
	TimeSeed    int64 `yaml:"time_seed"`
	MachineSeed int64 `yaml:"machine_seed"`
	Jobs        int   `yaml:"jobs"`
	Machines    int   `yaml:"machines"`
}

func (s Seeds) Generate() (*jobshop.Problem, error) {
	return Generate(s.TimeSeed, s.MachineSeed, s.Jobs, s.Machines)
}

// Catalog — именованный набор экземпляров.
type Catalog map[string]Seeds

type catalogFile struct {
	Instances Catalog `yaml:"instances"`
}

// ParseCatalog читает YAML вида
//
//	instances:
//	  ta01: {time_seed: 840612802, machine_seed: 398197754, jobs: 15, machines: 15}
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	if len(f.Instances) == 0 {
		return nil, fmt.Errorf("parse seed catalog: no instances")
	}
	for name, s := range f.Instances {
		if s.Jobs <= 0 || s.Machines <= 0 {
			return nil, fmt.Errorf("parse seed catalog: %s: jobs and machines must be > 0", name)
		}
	}
	return f.Instances, nil
}

func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed catalog: %w", err)
	}
	return ParseCatalog(data)
}

// Names возвращает имена экземпляров в лексикографическом порядке.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Problem генерирует экземпляр по имени.
func (c Catalog) Problem(name string) (*jobshop.Problem, error) {
	s, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("instance %q not in catalog", name)
	}
	return s.Generate()
}
