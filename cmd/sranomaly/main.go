// Command sranomaly scores time-series CSV files with the Spectral Residual
// detector, either as a one-shot filter or as an HTTP scoring service.
//
// Usage:
//
//	sranomaly -input data.csv [-target 0] [-config cfg.yaml]
//	sranomaly -serve -addr :8080 [-input warmup.csv] [-config cfg.yaml]
//
// The input CSV carries timestamps (RFC 3339 or Unix seconds) in the first
// column and one channel per remaining column. In filter mode the scores are
// written to stdout as "timestamp,score" lines.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-anomaly/detect/spectralres"
	"github.com/cwbudde/algo-anomaly/internal/scoreserver"
	"github.com/cwbudde/algo-anomaly/timeseries"
)

type fileConfig struct {
	Detector struct {
		LocalWindowSize  int  `yaml:"local_window_size"`
		Q                int  `yaml:"q"`
		EstimatedPoints  *int `yaml:"estimated_points"`
		PredictingPoints int  `yaml:"predicting_points"`
		TargetIndex      *int `yaml:"target_index"`
	} `yaml:"detector"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		inputPath  = flag.String("input", "", "CSV file to score (and to fit on in serve mode)")
		target     = flag.Int("target", -1, "channel to score in multi-channel input")
		serve      = flag.Bool("serve", false, "run the HTTP scoring service")
		addr       = flag.String("addr", ":8080", "listen address in serve mode")
	)
	flag.Parse()

	cfg := fileConfig{}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("sranomaly: %v", err)
		}
	}

	opts := detectorOptions(cfg, *target)
	det := spectralres.New(opts...)

	if *inputPath != "" {
		frame, err := readFrame(*inputPath)
		if err != nil {
			log.Fatalf("sranomaly: %v", err)
		}
		scores, err := det.Fit(frame)
		if err != nil {
			log.Fatalf("sranomaly: %v", err)
		}
		if !*serve {
			writeScores(os.Stdout, scores)
			return
		}
	} else if !*serve {
		log.Fatal("sranomaly: -input is required unless -serve is set")
	}

	listenAddr := *addr
	if cfg.Server.Addr != "" && !flagSet("addr") {
		listenAddr = cfg.Server.Addr
	}
	runServer(det, listenAddr)
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func loadConfig(path string, cfg *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func detectorOptions(cfg fileConfig, target int) []spectralres.Option {
	var opts []spectralres.Option
	d := cfg.Detector
	if d.LocalWindowSize > 0 {
		opts = append(opts, spectralres.WithLocalWindowSize(d.LocalWindowSize))
	}
	if d.Q > 0 {
		opts = append(opts, spectralres.WithQ(d.Q))
	}
	if d.EstimatedPoints != nil {
		opts = append(opts, spectralres.WithEstimatedPoints(*d.EstimatedPoints))
	}
	if d.PredictingPoints > 0 {
		opts = append(opts, spectralres.WithPredictingPoints(d.PredictingPoints))
	}
	if d.TargetIndex != nil {
		opts = append(opts, spectralres.WithTargetIndex(*d.TargetIndex))
	}
	if target >= 0 {
		opts = append(opts, spectralres.WithTargetIndex(target))
	}
	return opts
}

func readFrame(path string) (timeseries.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return timeseries.Frame{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return timeseries.Frame{}, fmt.Errorf("read input: %w", err)
	}
	if len(records) == 0 {
		return timeseries.Frame{}, fmt.Errorf("read input: %w", timeseries.ErrEmpty)
	}

	// An unparsable first row is treated as a header.
	start := 0
	if _, err := parseTimestamp(records[0][0]); err != nil {
		start = 1
	}
	rows := records[start:]
	if len(rows) == 0 {
		return timeseries.Frame{}, fmt.Errorf("read input: %w", timeseries.ErrEmpty)
	}

	channelCount := len(rows[0]) - 1
	if channelCount < 1 {
		return timeseries.Frame{}, fmt.Errorf("read input: need a timestamp column and at least one value column")
	}

	times := make([]time.Time, len(rows))
	channels := make([][]float64, channelCount)
	for c := range channels {
		channels[c] = make([]float64, len(rows))
	}

	for i, row := range rows {
		if len(row) != channelCount+1 {
			return timeseries.Frame{}, fmt.Errorf("read input: row %d has %d columns, want %d", start+i+1, len(row), channelCount+1)
		}
		t, err := parseTimestamp(row[0])
		if err != nil {
			return timeseries.Frame{}, fmt.Errorf("read input: row %d: %w", start+i+1, err)
		}
		times[i] = t
		for c := 0; c < channelCount; c++ {
			v, err := strconv.ParseFloat(row[c+1], 64)
			if err != nil {
				return timeseries.Frame{}, fmt.Errorf("read input: row %d column %d: %w", start+i+1, c+2, err)
			}
			channels[c][i] = v
		}
	}

	return timeseries.NewFrame(times, channels, nil)
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(0, int64(sec*float64(time.Second))).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func writeScores(w *os.File, scores timeseries.Series) {
	for i := 0; i < scores.Len(); i++ {
		t, v := scores.At(i)
		fmt.Fprintf(w, "%s,%g\n", t.Format(time.RFC3339), v)
	}
}

func runServer(det *spectralres.Detector, addr string) {
	server := scoreserver.New(det)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("sranomaly: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("sranomaly: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("sranomaly: shutdown: %v", err)
	}
	log.Print("sranomaly: stopped")
}
