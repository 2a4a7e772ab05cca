// Command combinedsieve runs the combined sieve engine (§4.5, §4.6): it
// computes K = P#/D, allocates the composite matrix, sieves with the
// selected method, and writes the surviving offsets per m to an unknowns
// file (§6.1), optionally persisting run metadata (§6.2).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/cpuid/v2"

	"github.com/jannismilz/primegap/internal/bigmath"
	"github.com/jannismilz/primegap/internal/sieve"
	"github.com/jannismilz/primegap/internal/sieveconfig"
	"github.com/jannismilz/primegap/internal/store"
	"github.com/jannismilz/primegap/internal/unknowns"
	"github.com/jannismilz/primegap/internal/wheel"
)

// exitCodes follows §7's failure taxonomy: 0 normal, 1 configuration
// error, 2 cancellation.
const (
	exitOK           = 0
	exitConfigError  = 1
	exitCancellation = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	cfg, outDir, err := parseFlags(args)
	if err != nil {
		level.Error(logger).Log("msg", "configuration error", "err", err)
		return exitConfigError
	}
	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "configuration error", "err", err)
		return exitConfigError
	}

	workers := cpuid.CPU.PhysicalCores
	if workers < 1 {
		workers = 1
	}
	level.Info(logger).Log("msg", "starting combined sieve",
		"p", cfg.P, "d", cfg.D, "mstart", cfg.MStart, "minc", cfg.MInc,
		"sieve_length", cfg.SL, "max_prime", cfg.MaxPrime, "method", cfg.Method,
		"workers", workers)

	started := time.Now()

	der, err := sieveconfig.Derive(cfg)
	if err != nil {
		level.Error(logger).Log("msg", "failed to derive configuration constants", "err", err)
		return exitConfigError
	}

	canc := sieve.NewCanceler()
	defer canc.Stop()
	rep := sieve.NewReporter(logger, cfg.Verbose)

	rows, err := runSieve(cfg, der, canc, rep, workers)
	if err != nil {
		level.Error(logger).Log("msg", "sieve failed", "err", err)
		return exitConfigError
	}

	if canc.Stopped() {
		// §5: a cancelled run only sieved up to some round-million boundary
		// below the configured max_prime; the filename and persisted
		// metadata must reflect what was actually covered, not the original
		// request.
		cfg.MaxPrime = sieve.TruncateMaxPrime(cfg.MaxPrime)
	}

	outPath := filepath.Join(outDir, unknowns.FileName(cfg))
	if err := writeUnknowns(outPath, rows, cfg.RLE); err != nil {
		level.Error(logger).Log("msg", "failed to write unknowns file", "err", err)
		return exitConfigError
	}
	level.Info(logger).Log("msg", "wrote unknowns file", "path", outPath, "rows", len(rows))

	if cfg.SearchDB != "" {
		if err := saveRunMetadata(cfg, len(rows), started, logger); err != nil {
			// §7.4: external-store failure is non-fatal for the sieve.
			level.Warn(logger).Log("msg", "failed to persist run metadata", "err", err)
		}
	}

	if canc.Stopped() {
		level.Info(logger).Log("msg", "cancelled, wrote valid prefix of full result", "max_prime", cfg.MaxPrime)
		return exitCancellation
	}
	return exitOK
}

func runSieve(cfg sieveconfig.Config, der *sieveconfig.Derived, canc *sieve.Canceler, rep *sieve.Reporter, workers int) ([]unknowns.Row, error) {
	switch cfg.Method {
	case sieveconfig.Method1:
		rowSizes := make([]int, len(der.ValidMi))
		for i := range rowSizes {
			rowSizes[i] = int(2 * cfg.SL)
		}
		matrix, err := sieve.NewCompositeMatrix(rowSizes)
		if err != nil {
			return nil, err
		}
		if err := sieve.RunMethod1(cfg, der, matrix, canc, rep, workers); err != nil {
			return nil, err
		}
		return collectRows(cfg, der, matrix, identityIndex(cfg.SL)), nil

	case sieveconfig.Method2:
		kModW := bigmath.ModUI(der.K, der.W)
		tbl := wheel.Build(cfg.SL, cfg.P, cfg.D, der.W, kModW)

		rowSizes := make([]int, len(der.ValidMi))
		for row, mi := range der.ValidMi {
			rowSizes[row] = tbl.SizeFor(cfg.MStart + mi)
		}
		matrix, err := sieve.NewCompositeMatrix(rowSizes)
		if err != nil {
			return nil, err
		}
		if err := sieve.RunMethod2(cfg, der, tbl, matrix, canc, rep, workers); err != nil {
			return nil, err
		}
		return collectRowsWheel(cfg, der, tbl, matrix), nil

	default:
		return nil, fmt.Errorf("combinedsieve: unknown method %d", cfg.Method)
	}
}

// identityIndex returns a dense-index array equal to the offset itself,
// for Method 1's unreindexed matrix.
func identityIndex(sl uint64) []uint32 {
	idx := make([]uint32, 2*sl+1)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

func collectRows(cfg sieveconfig.Config, der *sieveconfig.Derived, matrix *sieve.CompositeMatrix, idx []uint32) []unknowns.Row {
	rows := make([]unknowns.Row, len(der.ValidMi))
	for row, mi := range der.ValidMi {
		r := unknowns.Row{Mi: mi}
		for x := uint64(0); x < cfg.SL; x++ {
			if !matrix.Get(row, int(idx[x])) {
				r.Lower = append(r.Lower, cfg.SL-x)
			}
		}
		for x := cfg.SL + 1; x <= 2*cfg.SL; x++ {
			if !matrix.Get(row, int(idx[x])) {
				r.Upper = append(r.Upper, x-cfg.SL)
			}
		}
		reverse(r.Lower)
		rows[row] = r
	}
	return rows
}

func collectRowsWheel(cfg sieveconfig.Config, der *sieveconfig.Derived, tbl *wheel.Table, matrix *sieve.CompositeMatrix) []unknowns.Row {
	rows := make([]unknowns.Row, len(der.ValidMi))
	for row, mi := range der.ValidMi {
		m := cfg.MStart + mi
		idx := tbl.ResidueIndex(m)
		r := unknowns.Row{Mi: mi}
		for x := uint64(0); x < cfg.SL; x++ {
			if d := idx[x]; d != 0 && !matrix.Get(row, int(d)) {
				r.Lower = append(r.Lower, cfg.SL-x)
			}
		}
		for x := cfg.SL + 1; x <= 2*cfg.SL; x++ {
			if d := idx[x]; d != 0 && !matrix.Get(row, int(d)) {
				r.Upper = append(r.Upper, x-cfg.SL)
			}
		}
		reverse(r.Lower)
		rows[row] = r
	}
	return rows
}

func reverse(s []uint64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func writeUnknowns(path string, rows []unknowns.Row, rle bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("combinedsieve: create %s: %w", path, err)
	}
	defer f.Close()
	return unknowns.Write(f, rows, rle)
}

func saveRunMetadata(cfg sieveconfig.Config, numM int, started time.Time, logger log.Logger) error {
	s, err := store.Open(cfg.SearchDB)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRange(store.RangeRow{Cfg: cfg, NumM: numM, TimeStarted: started, TimeFinished: time.Now()})
}

func parseFlags(args []string) (sieveconfig.Config, string, error) {
	fs := flag.NewFlagSet("combinedsieve", flag.ContinueOnError)

	p := fs.Uint64("p", 0, "prime bound defining the primorial P#")
	d := fs.Uint64("d", 1, "divisor D; every prime factor of D must be <= p")
	mstart := fs.Uint64("mstart", 1, "first m in the range")
	minc := fs.Uint64("minc", 1, "count of m values")
	sl := fs.Uint64("sieve_length", 0, "sieve half-length SL")
	maxPrime := fs.Uint64("max_prime", 0, "largest prime trial-divided")
	minMerit := fs.Float64("min_merit", 0, "minimum merit for the statistics evaluator")
	saveUnknowns := fs.Bool("save_unknowns", false, "write the unknowns file (§6.1)")
	method1 := fs.Bool("method1", false, "use sieve Method 1 instead of Method 2")
	rle := fs.Bool("rle", false, "run-length encode the unknowns file")
	searchDB := fs.String("search_db", "", "sqlite database for persisted run metadata (§6.2)")
	recordsDB := fs.String("records_db", "", "sqlite database of known record gaps")
	verbose := fs.Int("verbose", 0, "verbosity tier (-1 quiet, 0 normal, 1/2 more detail)")
	outDir := fs.String("out_dir", ".", "directory the unknowns file is written to")

	if err := fs.Parse(args); err != nil {
		return sieveconfig.Config{}, "", err
	}

	applyEnvOverrides(p, d, maxPrime)

	method := sieveconfig.Method2
	if *method1 {
		method = sieveconfig.Method1
	}

	cfg := sieveconfig.Config{
		P: *p, D: *d, MStart: *mstart, MInc: *minc, SL: *sl, MaxPrime: *maxPrime,
		MinMerit: *minMerit, Method: method, RLE: *rle,
		SaveUnknowns: *saveUnknowns, SearchDB: *searchDB, RecordsDB: *recordsDB, Verbose: *verbose,
	}
	return cfg, *outDir, nil
}

// applyEnvOverrides lets PRIMEGAP_P / PRIMEGAP_D / PRIMEGAP_MAX_PRIME
// override the corresponding flags; a value that does not parse as an
// unsigned integer is ignored.
func applyEnvOverrides(p, d, maxPrime *uint64) {
	for env, dst := range map[string]*uint64{
		"PRIMEGAP_P": p, "PRIMEGAP_D": d, "PRIMEGAP_MAX_PRIME": maxPrime,
	} {
		if v, ok := os.LookupEnv(env); ok {
			var parsed uint64
			if _, err := fmt.Sscanf(v, "%d", &parsed); err == nil {
				*dst = parsed
			}
		}
	}
}
