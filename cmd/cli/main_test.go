package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"bridgesim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SIM_TRIALS", "500")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_HISTOGRAM_BINS", "10")
	t.Setenv("SIM_STRESS_UNIT", "pa")
	t.Setenv("SIM_SWEEP_WORKERS", "2")
	t.Setenv("LOG_LEVEL", "ERROR")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	setTestEnv(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulate_FlagsMapToRequest(t *testing.T) {
	out, err := execute(t, "simulate",
		"--length-mean", "10", "--width-mean", "2", "--strength-mean", "40",
		"--trials", "1000", "--seed", "42")
	require.NoError(t, err)

	assert.Contains(t, out, "| Length (m) | 10 | 0.5 |", "blank std dev defaults to 5% of the mean")
	assert.Contains(t, out, "| Width (m) | 2 | 0.1 |")
	assert.Contains(t, out, "| Material strength (N/m²) | 40 | 2 |")
	assert.Contains(t, out, "Number of Iterations: 1000")
	assert.Contains(t, out, "Probability of Failure: 100.00%")
	assert.Contains(t, out, "seed 42")
}

func TestSimulate_MaterialDefaultsToMegapascal(t *testing.T) {
	out, err := execute(t, "simulate", "--length-mean", "10", "--width-mean", "2", "--material", "steel")
	require.NoError(t, err)

	assert.Contains(t, out, "| Material strength (MPa) | 400 | 50 |")
	assert.Contains(t, out, "Number of Iterations: 500")
	assert.Contains(t, out, "The bridge is safe!")
}

func TestSimulate_MaterialKeepsUserStdDev(t *testing.T) {
	out, err := execute(t, "simulate", "--length-mean", "10", "--width-mean", "2",
		"--material", "wood", "--strength-stddev", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "| Material strength (MPa) | 75 | 3 |")
}

func TestSimulate_TrialsTableAndWorkbook(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "run.xlsx")
	md := filepath.Join(dir, "run.md")

	out, err := execute(t, "simulate", "--length-mean", "10", "--width-mean", "2", "--strength-mean", "1800",
		"--trials", "200", "--trials-table", "5", "--xlsx", xlsx, "--report", md)
	require.NoError(t, err)

	assert.Contains(t, out, "## Bridge Parameters Table")
	assert.Contains(t, out, "195 more trials not shown.")
	assert.Contains(t, out, "workbook written to "+xlsx)
	assert.Contains(t, out, "report written to "+md)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Trials")
	require.NoError(t, err)
	assert.Len(t, rows, 201)

	written, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(written), "## Common Bridge Materials and Their Strength")
}

func TestSimulate_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
		code string
	}{
		{"malformed trials", []string{"--trials", "many"}, errors.CodeParseError},
		{"zero trials", []string{"--trials", "0"}, errors.CodeInvalidInput},
		{"malformed mean", []string{"--strength-mean", "forty"}, errors.CodeParseError},
		{"unknown unit", []string{"--stress-unit", "psi"}, errors.CodeInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := []string{"simulate", "--length-mean", "10", "--width-mean", "2", "--strength-mean", "40"}
			_, err := execute(t, append(args, tc.args...)...)
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
		})
	}

	_, err := execute(t, "simulate", "--length-mean", "10", "--width-mean", "2", "--material", "glass")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMeanAndStdDev(t *testing.T) {
	out, err := execute(t, "mean", "2,4,6")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, err = execute(t, "stddev", "2,", "4,", "6")
	require.NoError(t, err)
	sd, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.633, sd, 1e-3)

	out, err = execute(t, "stddev", "5")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	_, err = execute(t, "mean")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "mean", "2,x")
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestMean_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loads.csv")
	require.NoError(t, os.WriteFile(path, []byte("trial,load\n1,2\n2,4\n3,6\n"), 0o644))

	out, err := execute(t, "mean", "--file", path, "--column", "Load")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, err = execute(t, "mean", "--file", path)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMaterials(t *testing.T) {
	out, err := execute(t, "materials")
	require.NoError(t, err)
	assert.Contains(t, out, "| Steel | 300-500 MPa (yield strength) |")
}

func TestSweep_StrengthMeans(t *testing.T) {
	args := []string{"sweep", "--length-mean", "10", "--width-mean", "2",
		"--strength-means", "1000,1e9", "--trials", "400", "--seed", "11"}

	first, err := execute(t, args...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "| strength 1000 | N(1000, 50) |"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "| strength 1e+09 |"), lines[3])
	assert.True(t, strings.HasSuffix(lines[3], "| 0/400 | 0.00% | true |"), lines[3])

	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second, "a seeded sweep is reproducible")
}

func TestSweep_Materials(t *testing.T) {
	out, err := execute(t, "sweep", "--length-mean", "10", "--width-mean", "2", "--trials", "300")
	require.NoError(t, err)

	assert.Contains(t, out, "| Steel | N(400, 50) | 0/300 | 0.00% | true |")
	assert.Contains(t, out, "| Fiber-reinforced concrete |")
}
