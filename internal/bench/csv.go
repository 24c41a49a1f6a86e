package bench

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeader = []string{
	"algo", "instance", "jobs", "machines", "runs",
	"time_best_ms", "time_mean_ms", "time_std_ms",
	"makespan_best", "makespan_mean", "makespan_std",
	"infeasible", "distinct", "stopped",
}

// WriteCSV пишет записи в w с заголовком.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			r.Instance,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			itoa(r.Infeasible),
			itoa(r.Distinct),
			itoa(r.Stopped),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV создаёт файл path (вместе с каталогом) и пишет в него записи.
func SaveCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
