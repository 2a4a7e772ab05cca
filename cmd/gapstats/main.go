// Command gapstats implements the statistics evaluator named abstractly
// in §4.7: it reads a combined-sieve unknowns file and computes, for
// every surviving m, the probability that the true gap centered there is
// a record, a missing gap, or above a merit threshold.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/big"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jannismilz/primegap/internal/bigmath"
	"github.com/jannismilz/primegap/internal/modsearch"
	"github.com/jannismilz/primegap/internal/sieveconfig"
	"github.com/jannismilz/primegap/internal/stats"
	"github.com/jannismilz/primegap/internal/store"
	"github.com/jannismilz/primegap/internal/unknowns"
)

// eulerMascheroni is the constant in Mertens' third theorem correction
// used to turn the raw prime density 1/ln(N) into a density over
// candidates already sieved free of small factors up to P.
const eulerMascheroni = 0.5772156649015329

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	cfg, inPath, err := parseFlags(args)
	if err != nil {
		level.Error(logger).Log("msg", "configuration error", "err", err)
		return 1
	}

	k, err := bigmath.K(cfg.P, cfg.D)
	if err != nil {
		level.Error(logger).Log("msg", "failed to compute K", "err", err)
		return 1
	}
	w := modsearch.Gcd(cfg.D, 210)

	f, err := os.Open(inPath)
	if err != nil {
		level.Error(logger).Log("msg", "failed to open unknowns file", "err", err)
		return 1
	}
	defer f.Close()
	rows, err := unknowns.ReadAll(f)
	if err != nil {
		level.Error(logger).Log("msg", "failed to parse unknowns file", "err", err)
		return 1
	}

	var table stats.RecordTable = stats.ConstantRecordTable{Conditional: 0, BothExtended: 0}
	if cfg.RecordsDB != "" {
		rt, err := store.OpenRecordGapTable(cfg.RecordsDB)
		if err != nil {
			level.Warn(logger).Log("msg", "failed to open records db, using defaults", "err", err)
		} else {
			defer rt.Close()
			table = rt
		}
	}

	results := make([]stats.Result, len(rows))
	mStatRows := make([]store.MStat, len(rows))
	for i, row := range rows {
		m := cfg.MStart + row.Mi
		residue := uint64(0)
		if w > 1 {
			residue = m % w
		}
		eval := stats.Evaluator{
			Density:     density(cfg.P, k, m),
			LogN:        bigmath.LogF(k) + math.Log(float64(m)),
			Residue:     residue,
			RecordTable: table,
		}
		res := eval.Evaluate(row, cfg.MinMerit)
		results[i] = res
		mStatRows[i] = store.MStat{
			Mi: row.Mi, ProbRecord: res.ProbRecord,
			ProbMissingGap: res.ProbMissingGap, ProbMerit: res.ProbMerit,
		}
	}

	level.Info(logger).Log("msg", "evaluated statistics", "m_count", len(results))

	if cfg.SearchDB != "" {
		if err := persist(cfg, results, mStatRows, logger); err != nil {
			level.Warn(logger).Log("msg", "failed to persist statistics", "err", err)
		}
	}

	for _, res := range results {
		fmt.Printf("%d : prob_record=%.6g prob_missing_gap=%.6g prob_merit=%.6g\n",
			res.Mi, res.ProbRecord, res.ProbMissingGap, res.ProbMerit)
	}
	return 0
}

// density estimates P(a candidate coprime to K is prime), using Mertens'
// third theorem correction so the estimate accounts for small factors up
// to P already having been sieved out.
func density(p uint64, k *big.Int, m uint64) float64 {
	logN := bigmath.LogF(k) + math.Log(float64(m))
	if logN <= 0 {
		return 0
	}
	correction := math.Exp(eulerMascheroni) * math.Log(float64(p))
	d := correction / logN
	if d > 1 {
		d = 1
	}
	return d
}

func persist(cfg sieveconfig.Config, results []stats.Result, rows []store.MStat, logger log.Logger) error {
	s, err := store.Open(cfg.SearchDB)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveMStats(cfg, rows); err != nil {
		return err
	}

	avgExtended, avgRecord := 0.0, 0.0
	for _, r := range results {
		avgExtended += r.ProbExtended
		avgRecord += r.ProbRecord
	}
	if n := len(results); n > 0 {
		avgExtended /= float64(n)
		avgRecord /= float64(n)
	}
	return s.SaveRangeStats(store.RangeStats{Cfg: cfg, ProbExtended: avgExtended, ProbRecord: avgRecord})
}

func parseFlags(args []string) (sieveconfig.Config, string, error) {
	fs := flag.NewFlagSet("gapstats", flag.ContinueOnError)

	p := fs.Uint64("p", 0, "prime bound defining the primorial P#")
	d := fs.Uint64("d", 1, "divisor D")
	mstart := fs.Uint64("mstart", 1, "first m in the range")
	minc := fs.Uint64("minc", 1, "count of m values")
	sl := fs.Uint64("sieve_length", 0, "sieve half-length SL")
	maxPrime := fs.Uint64("max_prime", 0, "largest prime trial-divided by the sieve that produced the input file")
	minMerit := fs.Float64("min_merit", 0, "minimum merit to report prob_merit against")
	searchDB := fs.String("search_db", "", "sqlite database for persisted statistics (§6.2)")
	recordsDB := fs.String("records_db", "", "sqlite database of known record gaps")
	verbose := fs.Int("verbose", 0, "verbosity tier")
	in := fs.String("unknowns_file", "", "path to the unknowns file to evaluate")

	if err := fs.Parse(args); err != nil {
		return sieveconfig.Config{}, "", err
	}
	if *in == "" {
		return sieveconfig.Config{}, "", fmt.Errorf("gapstats: -unknowns_file is required")
	}

	cfg := sieveconfig.Config{
		P: *p, D: *d, MStart: *mstart, MInc: *minc, SL: *sl, MaxPrime: *maxPrime,
		MinMerit: *minMerit, Method: sieveconfig.Method2, SaveUnknowns: true,
		SearchDB: *searchDB, RecordsDB: *recordsDB, Verbose: *verbose,
	}
	return cfg, *in, nil
}
