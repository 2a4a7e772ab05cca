package unknowns

import (
	"bytes"
	"testing"

	"github.com/jannismilz/primegap/internal/sieveconfig"
	"github.com/stretchr/testify/require"
)

func TestFileNamePlainAndRLE(t *testing.T) {
	cfg := sieveconfig.Config{P: 37, D: 6, MStart: 1, MInc: 100, SL: 1000, MaxPrime: 100000}
	require.Equal(t, "37_6_1_100_1000_100000.txt", FileName(cfg))

	cfg.RLE = true
	require.Equal(t, "37_6_1_100_1000_100000.rle.txt", FileName(cfg))
}

func TestWriteThenReadRoundTripsPlain(t *testing.T) {
	rows := []Row{
		{Mi: 0, Lower: []uint64{3, 7, 120}, Upper: []uint64{1, 50}},
		{Mi: 1, Lower: nil, Upper: []uint64{9}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, false))

	got, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestWriteThenReadRoundTripsRLE(t *testing.T) {
	rows := []Row{
		{Mi: 5, Lower: []uint64{4, 8, 300, 301}, Upper: []uint64{2}},
		{Mi: 6, Lower: []uint64{}, Upper: []uint64{}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, true))

	got, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Equal(t, rows[0].Mi, got[0].Mi)
	require.Equal(t, rows[0].Lower, got[0].Lower)
	require.Equal(t, rows[0].Upper, got[0].Upper)
	require.Empty(t, got[1].Lower)
	require.Empty(t, got[1].Upper)
}

func TestParseLineRejectsMalformedHeader(t *testing.T) {
	_, err := ParseLine([]byte("not a valid line"))
	require.Error(t, err)
}

func TestWriteRejectsDeltaTooLargeForRLE(t *testing.T) {
	rows := []Row{{Mi: 0, Lower: []uint64{1, 1 + 128*128}}}
	var buf bytes.Buffer
	require.Error(t, Write(&buf, rows, true))
}
