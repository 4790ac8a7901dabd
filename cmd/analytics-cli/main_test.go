package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sampleSeries = "date,value\n2024-01-01,10\n2024-01-02,10\n2024-01-03,10\n2024-01-04,10\n2024-01-05,90\n"

func TestAnomaliesCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "series.csv", sampleSeries)

	out, err := runCLI(t, "anomalies", path, "--threshold", "1.5")
	require.NoError(t, err)

	var result struct {
		AnomalyCount int `json:"anomaly_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.AnomalyCount)
}

func TestDemandCommandIsReproducibleWithSeed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "series.csv", sampleSeries)

	first, err := runCLI(t, "demand", path, "--days-ahead", "4", "--noise", "seeded", "--seed", "7")
	require.NoError(t, err)
	second, err := runCLI(t, "demand", path, "--days-ahead", "4", "--noise", "seeded", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var result struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &result))
	assert.Len(t, result.Predictions, 4)
}

func TestRevenueCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.csv", "date,amount\n2024-01-10,100\n2024-02-10,200\n2024-03-10,300\n")

	out, err := runCLI(t, "revenue", path, "--months", "2")
	require.NoError(t, err)

	var result struct {
		Forecast    []json.RawMessage `json:"forecast"`
		SeriesStart string            `json:"series_start"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Forecast, 2)
	assert.Equal(t, "2024-01", result.SeriesStart)
}

func TestJSONCommands(t *testing.T) {
	dir := t.TempDir()

	customers := writeFile(t, dir, "customers.json", `[{"id":"c1","days_inactive":200,"order_count":1,"avg_order_value":10}]`)
	out, err := runCLI(t, "churn", customers)
	require.NoError(t, err)
	assert.Contains(t, out, `"risk_level": "high"`)

	products := writeFile(t, dir, "products.json", `[{"id":"p1","current_stock":10,"demand_history":[5,5,5],"lead_time_days":2,"unit_cost":10,"holding_cost_pct_per_year":25}]`)
	out, err = runCLI(t, "inventory", products)
	require.NoError(t, err)
	assert.Contains(t, out, `"economic_order_quantity"`)

	request := writeFile(t, dir, "request.json", `{
		"customer_id":"u1",
		"history":[{"product_id":"a","category":"tea","price":10}],
		"catalog":[{"id":"a","category":"tea","price":10,"popularity":0.5},{"id":"b","category":"tea","price":11,"popularity":0.5}]
	}`)
	out, err = runCLI(t, "recommend", request, "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `"product_id": "b"`)
	assert.NotContains(t, out, `"product_id": "a"`)
}

func TestConfigFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "series.csv", sampleSeries)

	// 設定ファイルの閾値が使われる
	cfg := writeFile(t, dir, "cli.yaml", "threshold: 10\nnoise: \"off\"\n")
	out, err := runCLI(t, "--config", cfg, "anomalies", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"anomaly_count": 0`)

	_, err = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "anomalies", path)
	assert.Error(t, err)

	_, err = runCLI(t, "anomalies", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = runCLI(t, "demand", path, "--days-ahead", "0")
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"not":"an array"}`)
	_, err = runCLI(t, "churn", bad)
	assert.Error(t, err)
}
