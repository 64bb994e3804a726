package db

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/IDSolutions/ramdb/cmd/util"
	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for ramdb servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__perf"
	perfValueSize   = 64
	perfNumThreads  = 10
	perfKeySpread   = 100
	perfSkip        = make([]string, 0)
	perfSampleLimit = 4096
)

// benchmark is one named perf test. prepare runs once per key, op once per iteration.
type benchmark struct {
	name    string
	prepare func(key string) error
	op      func(key string, i int) error
}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,hgetall)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark. Calls are serialized by the access gate"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 64, util.WrapString("Size of the values written (in bytes)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfValueSize = viper.GetInt("value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for ramdb servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	value := strings.Repeat("x", perfValueSize)
	set := func(key string) error { return call("set", key, value) }

	benchmarks := []benchmark{
		{name: "set", op: func(key string, _ int) error { return call("set", key, value) }},
		{name: "get", prepare: set, op: func(key string, _ int) error { return fetch("get", key) }},
		{name: "get-missing", op: func(key string, _ int) error { return fetch("get", key+"-missing") }},
		{name: "hset", op: func(key string, i int) error { return call("hset", key, "f"+strconv.Itoa(i%16), value) }},
		{name: "hgetall",
			prepare: func(key string) error { return call("hmset", key, "a", value, "b", value, "c", value) },
			op:      func(key string, _ int) error { return fetch("hgetall", key) }},
		{name: "rpush", op: func(key string, _ int) error { return call("rpush", key, value) }},
		{name: "lrange",
			prepare: func(key string) error { return call("rpush", key, value, value, value, value) },
			op:      func(key string, _ int) error { return fetch("lrange", key, "0", "-1") }},
		{name: "mixed", prepare: set, op: func(key string, i int) error {
			switch i % 4 {
			case 0:
				return call("set", key, value)
			case 1:
				return fetch("get", key)
			case 2:
				return call("exists", key)
			default:
				return call("incrby", key+"-counter", "1")
			}
		}},
	}

	fmt.Println("starting tests...")
	results := make(map[string]testing.BenchmarkResult)
	latencies := make(map[string]metrics.Histogram)

	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			printResult(bm.name, testing.BenchmarkResult{}, nil)
			continue
		}
		result, hist := runBenchmark(bm)
		results[bm.name] = result
		latencies[bm.name] = hist
		printResult(bm.name, result, hist)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, latencies); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}
	return nil
}

// runBenchmark runs bm in parallel and records the latency of every operation
func runBenchmark(bm benchmark) (testing.BenchmarkResult, metrics.Histogram) {
	hist := metrics.NewHistogram(metrics.NewUniformSample(perfSampleLimit))
	getKey, iter := getKeys(bm.name)

	result := testing.Benchmark(func(b *testing.B) {
		if bm.prepare != nil {
			iter(func(k string) {
				if err := bm.prepare(k); err != nil {
					Logger.Warningf("(%s) - error preparing key: %v", bm.name, err)
				}
			})
		}
		b.Cleanup(func() {
			iter(func(k string) {
				if err := call("del", k, k+"-counter"); err != nil {
					Logger.Warningf("(%s) - error deleting key: %v", bm.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := bm.op(getKey(counter), counter); err != nil {
					Logger.Warningf("(%s) - error: %v", bm.name, err)
				}
				hist.Update(time.Since(start).Microseconds())
				counter++
			}
		})
	})
	return result, hist
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func call(function string, args ...string) error {
	_, err := dbClient.Call(function, args)
	return err
}

func fetch(operation, key string, params ...string) error {
	_, err := dbClient.Fetch(ramdb.Request{Operation: operation, Key: key, Params: params})
	return err
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, hist metrics.Histogram) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-15sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	ps := hist.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-15s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %.0fµs\tp99 %.0fµs\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, ps[0], ps[1])
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, latencies map[string]metrics.Histogram) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetClientConfig()
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Micros", "P99Micros",
		"Endpoints", "TimeoutSec", "Serializer", "Transport",
		"Threads", "ValueSize", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		nsPerOp := math.Max(float64(result.NsPerOp()), 1)
		ps := latencies[test].Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}
	return nil
}
