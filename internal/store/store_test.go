package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jannismilz/primegap/internal/sieveconfig"
)

func testConfig() sieveconfig.Config {
	return sieveconfig.Config{
		P: 503, D: 1, MStart: 1, MInc: 10, SL: 3000, MaxPrime: 1_000_000_000,
		MinMerit: 20, Method: sieveconfig.Method2, SaveUnknowns: true,
	}
}

func TestConfigHashDeterministic(t *testing.T) {
	c1 := testConfig()
	c2 := testConfig()
	require.Equal(t, ConfigHash(c1), ConfigHash(c2))

	c2.MInc = 11
	require.NotEqual(t, ConfigHash(c1), ConfigHash(c2))
}

func TestSaveRangeUpdatesOnlyTiming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	cfg := testConfig()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRange(RangeRow{Cfg: cfg, NumM: 10, TimeStarted: start, TimeFinished: start}))

	finish := start.Add(time.Hour)
	require.NoError(t, s.SaveRange(RangeRow{Cfg: cfg, NumM: 999, TimeStarted: start, TimeFinished: finish}))

	var numM int
	row := s.db.QueryRow("SELECT num_m FROM range WHERE config_hash = ?", ConfigHash(cfg))
	require.NoError(t, row.Scan(&numM))
	require.Equal(t, 10, numM, "num_m must not change on conflict, only timing fields")
}

func TestSaveMStatsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	cfg := testConfig()
	rows := []MStat{
		{Mi: 0, ProbRecord: 0.1, ProbMissingGap: 0.2, ProbMerit: 0.3},
		{Mi: 3, ProbRecord: 0.4, ProbMissingGap: 0.5, ProbMerit: 0.6},
	}
	require.NoError(t, s.SaveMStats(cfg, rows))

	var count int
	row := s.db.QueryRow("SELECT COUNT(*) FROM m_stats WHERE config_hash = ?", ConfigHash(cfg))
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 2, count)
}
