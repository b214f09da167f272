package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
operating_point "base" {
  min_pressure   = 80 * bar
  pressure_ratio = 2.2
  temperatures   = [310, 1073, 900]
}

sweep "recyc" {
  point     = "base"
  parameter = "temp_recyc"
  from      = 880
  to        = 920
  steps     = 3
}
`), 0o644))

	out := filepath.Join(dir, "out")
	require.NoError(t, run("conf/config.ini", path, out, ""))

	assert.Len(t, readCSV(t, filepath.Join(out, "base_cycle.csv")), 9)
	assert.Len(t, readCSV(t, filepath.Join(out, "base_cycle_g.csv")), 5)
	assert.Len(t, readCSV(t, filepath.Join(out, "recyc_sweep.csv")), 4)
}

func TestRunScenarioReportsFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
operating_point "flat" {
  min_pressure   = 80 * bar
  pressure_ratio = 1
  temperatures   = [310, 1073, 900]
}
`), 0o644))

	err := run("conf/config.ini", path, dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 operating points failed")
	_, statErr := os.Stat(filepath.Join(dir, "flat_cycle.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunScenarioUsesConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
operating_point "base" {
  min_pressure   = 80 * bar
  pressure_ratio = 2.2
  temperatures   = [310, 1073, 900]
}
`), 0o644))
	cfg := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(cfg, []byte("[cycle]\nnet_power = 50\n"), 0o644))

	full := filepath.Join(dir, "full")
	half := filepath.Join(dir, "half")
	require.NoError(t, run("conf/config.ini", path, full, ""))
	require.NoError(t, run(cfg, path, half, ""))

	massFlow := func(out string) float64 {
		rows := readCSV(t, filepath.Join(out, "base_cycle.csv"))
		row := rows[1]
		v, err := strconv.ParseFloat(row[len(row)-1], 64)
		require.NoError(t, err)
		return v
	}
	assert.InDelta(t, 0.5, massFlow(half)/massFlow(full), 1e-9)
}
