// Package unknowns implements the §6.1 unknowns-file writer and reader:
// one line per valid m, listing the offsets that survived sieving on each
// side of the center, in either plain or run-length encoding.
package unknowns

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jannismilz/primegap/internal/sieveconfig"
)

// Row is the surviving-offset record for one m. Lower and Upper are
// ascending distances from the center (1..SL); the center itself (i=0) is
// never listed.
type Row struct {
	Mi    uint64
	Lower []uint64
	Upper []uint64
}

// FileName builds the canonical unknowns filename for cfg, following the
// original's gen_unknown_fn convention.
func FileName(cfg sieveconfig.Config) string {
	name := fmt.Sprintf("%d_%d_%d_%d_%d_%d.txt", cfg.P, cfg.D, cfg.MStart, cfg.MInc, cfg.SL, cfg.MaxPrime)
	if cfg.RLE {
		name = name[:len(name)-len(".txt")] + ".rle.txt"
	}
	return name
}

// Write serializes rows to w in ascending mi order, in plain or RLE
// encoding per rle.
func Write(w io.Writer, rows []Row, rle bool) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if err := writeRow(bw, row, rle); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, row Row, rle bool) error {
	if _, err := fmt.Fprintf(w, "%d : -%d +%d |", row.Mi, len(row.Lower), len(row.Upper)); err != nil {
		return err
	}
	if err := writeSide(w, row.Lower, '-', rle); err != nil {
		return err
	}
	if _, err := w.WriteString(" |"); err != nil {
		return err
	}
	if err := writeSide(w, row.Upper, '+', rle); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func writeSide(w *bufio.Writer, values []uint64, sign byte, rle bool) error {
	if rle {
		if err := w.WriteByte(' '); err != nil {
			return err
		}
		last := uint64(0)
		for _, v := range values {
			delta := v - last
			last = v
			if delta >= 128*128 {
				return fmt.Errorf("unknowns: delta %d too large to RLE-encode", delta)
			}
			if err := w.WriteByte(byte(48 + delta/128)); err != nil {
				return err
			}
			if err := w.WriteByte(byte(48 + delta%128)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(w, " %c%d", sign, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll parses every row of an unknowns file, auto-detecting plain vs
// RLE encoding per line.
func ReadAll(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var rows []Row
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		row, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseLine parses a single unknowns-file line, auto-detecting its
// encoding: RLE bytes are always in [48, 176), outside the range of the
// plain encoding's leading '-'/'+' sign bytes.
func ParseLine(line []byte) (Row, error) {
	line = bytes.TrimRight(line, "\r\n")

	sep := bytes.Index(line, []byte(" : -"))
	if sep < 0 {
		return Row{}, fmt.Errorf("unknowns: malformed header in %q", line)
	}
	mi, err := strconv.ParseUint(string(line[:sep]), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("unknowns: bad mi: %w", err)
	}

	rest := line[sep+len(" : -"):]
	ul, rest, err := parseUintToken(rest, ' ')
	if err != nil {
		return Row{}, err
	}
	if len(rest) == 0 || rest[0] != '+' {
		return Row{}, fmt.Errorf("unknowns: expected '+' in %q", line)
	}
	uu, rest, err := parseUintToken(rest[1:], ' ')
	if err != nil {
		return Row{}, err
	}
	// parseUintToken already consumed the space after the upper count.
	if len(rest) < 1 || rest[0] != '|' {
		return Row{}, fmt.Errorf("unknowns: expected header-closing '|' in %q", line)
	}
	rest = rest[1:]

	lower, rest, err := parseSegment(rest, ul, '-')
	if err != nil {
		return Row{}, err
	}
	if len(rest) < 2 || rest[0] != ' ' || rest[1] != '|' {
		return Row{}, fmt.Errorf("unknowns: expected segment-closing '|' in %q", line)
	}
	rest = rest[2:]

	upper, _, err := parseSegment(rest, uu, '+')
	if err != nil {
		return Row{}, err
	}

	return Row{Mi: mi, Lower: lower, Upper: upper}, nil
}

// parseUintToken parses digits up to the next occurrence of sep, returning
// the remainder starting just after sep.
func parseUintToken(rest []byte, sep byte) (uint64, []byte, error) {
	j := 0
	for j < len(rest) && rest[j] != sep {
		j++
	}
	if j == len(rest) {
		return 0, nil, fmt.Errorf("unknowns: missing separator %q", sep)
	}
	v, err := strconv.ParseUint(string(rest[:j]), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("unknowns: bad integer: %w", err)
	}
	return v, rest[j+1:], nil
}

// parseSegment consumes one side's leading space plus its count entries
// (plain or RLE, auto-detected), returning the values and the remaining
// bytes (starting at the segment-closing " |" or at end of line). An empty
// side is written as nothing in plain encoding and as a lone space in RLE,
// so for count == 0 the space is consumed only when it does not begin " |".
func parseSegment(rest []byte, count uint64, sign byte) ([]uint64, []byte, error) {
	if count == 0 {
		if len(rest) > 0 && rest[0] == ' ' && !bytes.HasPrefix(rest, []byte(" |")) {
			rest = rest[1:]
		}
		return nil, rest, nil
	}
	if len(rest) == 0 || rest[0] != ' ' {
		return nil, nil, fmt.Errorf("unknowns: segment missing leading space")
	}
	rest = rest[1:]
	if rest[0] == sign {
		return parsePlainSegment(rest, count, sign)
	}
	return parseRLESegment(rest, count)
}

func parsePlainSegment(rest []byte, count uint64, sign byte) ([]uint64, []byte, error) {
	values := make([]uint64, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(rest) == 0 || rest[0] != sign {
			return nil, nil, fmt.Errorf("unknowns: expected %q sign", sign)
		}
		rest = rest[1:]
		j := 0
		for j < len(rest) && rest[j] != ' ' {
			j++
		}
		v, err := strconv.ParseUint(string(rest[:j]), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("unknowns: bad offset: %w", err)
		}
		values = append(values, v)
		rest = rest[j:]
		if i+1 < count {
			if len(rest) == 0 || rest[0] != ' ' {
				return nil, nil, fmt.Errorf("unknowns: missing separator between entries")
			}
			rest = rest[1:]
		}
	}
	return values, rest, nil
}

func parseRLESegment(rest []byte, count uint64) ([]uint64, []byte, error) {
	if uint64(len(rest)) < 2*count {
		return nil, nil, fmt.Errorf("unknowns: truncated RLE segment")
	}
	values := make([]uint64, 0, count)
	last := uint64(0)
	for i := uint64(0); i < count; i++ {
		upper, lower := rest[0], rest[1]
		if upper < 48 || lower < 48 {
			return nil, nil, fmt.Errorf("unknowns: RLE byte below printable range")
		}
		delta := uint64(upper-48)*128 + uint64(lower-48)
		last += delta
		values = append(values, last)
		rest = rest[2:]
	}
	return values, rest, nil
}
