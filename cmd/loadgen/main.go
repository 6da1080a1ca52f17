// Command loadgen replays a Zipf-skewed mix of filter combinations against
// /query and reports latency percentiles and the cache hit ratio.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL        string
	Concurrency    int
	Duration       time.Duration
	ZipfS          float64
	ZipfV          float64
	QueryCount     int
	OutputPrefix   string
	RequestTimeout time.Duration
	Seed           int64
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "target", "http://localhost:8090", "Explorer base URL")
	flag.IntVar(&cfg.Concurrency, "concurrency", 16, "Concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&cfg.ZipfS, "zipf-s", 1.3, "Zipf parameter s (>1)")
	flag.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf parameter v (>=1)")
	flag.IntVar(&cfg.QueryCount, "queries", 64, "Distinct filter combinations in pool")
	flag.StringVar(&cfg.OutputPrefix, "out", "results/loadgen", "Output file prefix (JSON/CSV)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Random seed (0 = time based)")
	flag.Parse()
	return cfg
}

// options is the subset of the /filters response the generator needs.
type options struct {
	Years         []int    `json:"years"`
	Districts     []string `json:"districts"`
	Weekdays      []string `json:"weekdays"`
	AgeCategories []string `json:"age_categories"`
	Hours         struct {
		Low  int `json:"low"`
		High int `json:"high"`
	} `json:"hours"`
}

func fetchOptions(ctx context.Context, c *http.Client, base string) (options, error) {
	var o options
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/filters", nil)
	if err != nil {
		return o, fmt.Errorf("build /filters request: %w", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return o, fmt.Errorf("GET /filters: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return o, fmt.Errorf("GET /filters status %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return o, fmt.Errorf("decode /filters: %w", err)
	}
	return o, nil
}

// makeQueries draws count distinct-ish query strings. Index 0 is the
// untouched default view, the most common request of a dashboard.
func makeQueries(o options, count int, r *rand.Rand) []url.Values {
	if count <= 0 {
		return nil
	}
	out := make([]url.Values, 0, count)
	out = append(out, url.Values{})
	for len(out) < count {
		q := url.Values{}
		if len(o.Years) > 0 {
			q.Set("year", strconv.Itoa(o.Years[r.Intn(len(o.Years))]))
		}
		if d := subset(o.Districts, r); len(d) > 0 {
			q.Set("district", strings.Join(d, ","))
		}
		if w := subset(o.Weekdays, r); len(w) > 0 {
			q.Set("weekday", strings.Join(w, ","))
		}
		if a := subset(o.AgeCategories, r); len(a) > 0 {
			q.Set("age", strings.Join(a, ","))
		}
		if span := o.Hours.High - o.Hours.Low; span > 0 {
			lo := o.Hours.Low + r.Intn(span+1)
			hi := lo + r.Intn(o.Hours.High-lo+1)
			q.Set("hour_low", strconv.Itoa(lo))
			q.Set("hour_high", strconv.Itoa(hi))
		}
		out = append(out, q)
	}
	return out
}

// non-empty random subset, or nil when vals is empty
func subset(vals []string, r *rand.Rand) []string {
	if len(vals) == 0 {
		return nil
	}
	var out []string
	for _, v := range vals {
		if r.Intn(2) == 0 {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, vals[r.Intn(len(vals))])
	}
	return out
}

// request result (one sample per request)
type sample struct {
	Timestamp time.Time
	Latency   time.Duration
	Status    int
	Cache     string
	ErrorMsg  string
	QueryIdx  int
}

type summary struct {
	StartTime     time.Time `json:"start"`
	EndTime       time.Time `json:"end"`
	DurationSec   float64   `json:"duration_sec"`
	TotalRequests int64     `json:"total"`
	SuccessCount  int64     `json:"success"`
	ErrorCount    int64     `json:"errors"`
	CacheHits     int64     `json:"cache_hits"`
	HitRatio      float64   `json:"hit_ratio"`
	ThroughputRPS float64   `json:"throughput_rps"`
	P50Ms         float64   `json:"p50_ms"`
	P95Ms         float64   `json:"p95_ms"`
	P99Ms         float64   `json:"p99_ms"`
	Concurrency   int       `json:"concurrency"`
	ZipfS         float64   `json:"zipf_s"`
	ZipfV         float64   `json:"zipf_v"`
	Queries       int       `json:"queries"`
	BaseURL       string    `json:"target"`
}

type aggregatedResult struct {
	total   int64
	success int64
	errors  int64
	hits    int64
	latMs   []float64
}

func main() {
	cfg := loadConfig()
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPrefix), 0o750); err != nil {
		log.Fatalf("mkdir results: %v", err)
	}
	prefix := fmt.Sprintf("%s_%s", cfg.OutputPrefix, time.Now().UTC().Format("20060102_150405Z"))

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 4 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        256,
			MaxIdleConnsPerHost: 128,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.RequestTimeout,
	}

	opts, err := fetchOptions(context.Background(), httpClient, cfg.BaseURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	queries := makeQueries(opts, cfg.QueryCount, r)
	if len(queries) == 0 {
		log.Fatalf("no queries generated")
	}
	target := strings.TrimRight(cfg.BaseURL, "/") + "/query"
	imax := uint64(len(queries)) - 1

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	csvPath := prefix + "_samples.csv"
	jsonPath := prefix + "_summary.json"
	csvFile, err := os.Create(filepath.Clean(csvPath))
	if err != nil {
		log.Printf("open csv: %v", err)
		return
	}
	defer func() { _ = csvFile.Close() }()
	csvWriter := csv.NewWriter(csvFile)

	samplesChan := make(chan sample, 4096)
	resultsChan := make(chan aggregatedResult, 1)
	go func() {
		_ = csvWriter.Write([]string{"timestamp", "latency_ms", "status", "cache", "error", "query_idx"})
		var agg aggregatedResult
		for s := range samplesChan {
			agg.total++
			ms := float64(s.Latency.Microseconds()) / 1000.0
			if s.ErrorMsg == "" {
				agg.success++
				agg.latMs = append(agg.latMs, ms)
				if strings.HasPrefix(s.Cache, "hit") {
					agg.hits++
				}
			} else {
				agg.errors++
			}
			_ = csvWriter.Write([]string{
				s.Timestamp.UTC().Format(time.RFC3339Nano),
				strconv.FormatFloat(ms, 'f', 3, 64),
				strconv.Itoa(s.Status),
				s.Cache,
				s.ErrorMsg,
				strconv.Itoa(s.QueryIdx),
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Printf("csv flush error: %v", err)
		}
		resultsChan <- agg
	}()

	startTime := time.Now()
	log.Printf("loadgen start target=%s dur=%s conc=%d zipf(s=%.2f,v=%.2f) queries=%d seed=%d",
		target, cfg.Duration, cfg.Concurrency, cfg.ZipfS, cfg.ZipfV, len(queries), seed)

	var wg sync.WaitGroup
	wg.Add(cfg.Concurrency)
	for workerID := range cfg.Concurrency {
		go func(id int) {
			defer wg.Done()
			rWorker := rand.New(rand.NewSource(seed + int64(id) + 1))
			zipfDist := rand.NewZipf(rWorker, cfg.ZipfS, cfg.ZipfV, imax)
			for {
				if ctx.Err() != nil {
					return
				}
				idx := int(zipfDist.Uint64())
				s := doQuery(ctx, httpClient, target+"?"+queries[idx].Encode())
				s.QueryIdx = idx
				select {
				case samplesChan <- s:
				case <-ctx.Done():
					return
				}
			}
		}(workerID)
	}

	go func() {
		<-ctx.Done()
		wg.Wait()
		close(samplesChan)
	}()

	agg := <-resultsChan
	endTime := time.Now()
	elapsed := endTime.Sub(startTime).Seconds()

	sort.Float64s(agg.latMs)
	run := summary{
		StartTime:     startTime.UTC(),
		EndTime:       endTime.UTC(),
		DurationSec:   elapsed,
		TotalRequests: agg.total,
		SuccessCount:  agg.success,
		ErrorCount:    agg.errors,
		CacheHits:     agg.hits,
		ThroughputRPS: float64(agg.total) / elapsed,
		P50Ms:         percentile(agg.latMs, 50),
		P95Ms:         percentile(agg.latMs, 95),
		P99Ms:         percentile(agg.latMs, 99),
		Concurrency:   cfg.Concurrency,
		ZipfS:         cfg.ZipfS,
		ZipfV:         cfg.ZipfV,
		Queries:       len(queries),
		BaseURL:       cfg.BaseURL,
	}
	if agg.success > 0 {
		run.HitRatio = float64(agg.hits) / float64(agg.success)
	}

	if jsonFile, err := os.Create(filepath.Clean(jsonPath)); err == nil {
		enc := json.NewEncoder(jsonFile)
		enc.SetIndent("", "  ")
		_ = enc.Encode(run)
		_ = jsonFile.Close()
	}

	log.Printf("done: total=%d succ=%d err=%d hit=%.2f thr=%.2f rps p50=%.1fms p95=%.1fms p99=%.1fms",
		agg.total, agg.success, agg.errors, run.HitRatio, run.ThroughputRPS, run.P50Ms, run.P95Ms, run.P99Ms)
	log.Printf("wrote %s and %s", jsonPath, csvPath)
}

func doQuery(ctx context.Context, c *http.Client, u string) sample {
	s := sample{Timestamp: time.Now()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	resp, err := c.Do(req)
	s.Latency = time.Since(s.Timestamp)
	if err != nil {
		s.ErrorMsg = err.Error()
		return s
	}
	s.Status = resp.StatusCode
	s.Cache = resp.Header.Get("X-Cache")
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.ErrorMsg = fmt.Sprintf("status=%d", resp.StatusCode)
	}
	return s
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 100 {
		return sortedValues[len(sortedValues)-1]
	}
	k := (p / 100.0) * float64(len(sortedValues)-1)
	f := math.Floor(k)
	i := int(f)
	if i >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}
	d := k - f
	return sortedValues[i]*(1-d) + sortedValues[i+1]*d
}
