package jobshop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed возвращается, если файл задачи не соответствует формату.
var ErrMalformed = errors.New("malformed problem file")

// ParseProblem читает задачу в текстовом формате:
//
//	<jobs> <machines>
//	<machine> <duration> <machine> <duration> ...   # по строке на работу
//
// Пустые строки и строки, начинающиеся с '#', пропускаются.
// base — номер первого станка во входных данных (0 или 1).
func ParseProblem(r io.Reader, base int) (*Problem, error) {
	if base != 0 && base != 1 {
		return nil, fmt.Errorf("machine id base must be 0 or 1 (got %d)", base)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	headerSeen := false
	jobs, machines := 0, 0
	var routes [][]Step

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if !headerSeen {
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: header must be \"<jobs> <machines>\"", ErrMalformed, lineNo)
			}
			var err error
			if jobs, err = atoiStrict(fields[0]); err != nil || jobs <= 0 {
				return nil, fmt.Errorf("%w: line %d: bad job count %q", ErrMalformed, lineNo, fields[0])
			}
			if machines, err = atoiStrict(fields[1]); err != nil || machines <= 0 {
				return nil, fmt.Errorf("%w: line %d: bad machine count %q", ErrMalformed, lineNo, fields[1])
			}
			headerSeen = true
			continue
		}

		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("%w: line %d: expected machine/duration pairs, got %d tokens", ErrMalformed, lineNo, len(fields))
		}
		route := make([]Step, 0, len(fields)/2)
		for i := 0; i < len(fields); i += 2 {
			m, err := atoiStrict(fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad machine %q: %v", ErrMalformed, lineNo, fields[i], err)
			}
			d, err := atoiStrict(fields[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad duration %q: %v", ErrMalformed, lineNo, fields[i+1], err)
			}
			m -= base
			if m < 0 || m >= machines {
				return nil, fmt.Errorf("%w: line %d: machine %d out of range", ErrMalformed, lineNo, m+base)
			}
			route = append(route, Step{Machine: m, Duration: d})
		}
		routes = append(routes, route)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if len(routes) != jobs {
		return nil, fmt.Errorf("%w: header declares %d jobs, found %d", ErrMalformed, jobs, len(routes))
	}

	p, err := NewProblem(machines, routes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return p, nil
}

// LoadProblem читает задачу из файла.
func LoadProblem(path string, base int) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open problem: %w", err)
	}
	defer f.Close()

	p, err := ParseProblem(f, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// FormatProblem записывает задачу в формате, который читает ParseProblem.
func FormatProblem(w io.Writer, p *Problem, base int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", len(p.Jobs), p.Machines)
	for _, job := range p.Jobs {
		for i, op := range job.Ops {
			if i > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%d %d", op.Machine+base, op.Duration)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func atoiStrict(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
