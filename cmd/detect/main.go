// Command detect runs the STA/LTA shaking detector over raw accelerometer
// records. Records come from an NDJSON file, a synthetic test waveform, or
// the public OpenEEW archive on S3.
//
// Usage:
//
//	go run ./cmd/detect -input waveform.ndjson
//	go run ./cmd/detect -simulate
//	go run ./cmd/detect -country mx -date 2023-02-06 -hour 1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/couchcryptid/quake-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/quake-monitor/internal/adapter/openeew"
	"github.com/couchcryptid/quake-monitor/internal/config"
	"github.com/couchcryptid/quake-monitor/internal/domain"
	"github.com/couchcryptid/quake-monitor/internal/eew"
)

func main() {
	input := flag.String("input", "", "path to an NDJSON accelerometer record file")
	simulate := flag.Bool("simulate", false, "run against a synthetic waveform with an injected shake")
	country := flag.String("country", "", "OpenEEW country code (e.g. mx, cl)")
	date := flag.String("date", "", "archive date in YYYY-MM-DD (with -country)")
	hour := flag.Int("hour", 0, "archive hour 0-23 UTC (with -country)")
	bucket := flag.String("bucket", "", "OpenEEW S3 bucket (default from OPENEEW_BUCKET)")
	region := flag.String("region", "", "OpenEEW S3 region (default from OPENEEW_REGION)")

	sta := flag.Float64("sta", 0.32, "short-term average window in seconds")
	lta := flag.Float64("lta", 3.2, "long-term average window in seconds")
	threshold := flag.Float64("threshold", 3.0, "STA/LTA trigger ratio")
	rate := flag.Float64("rate", domain.DefaultSampleRate, "sample rate in Hz for window sizing")
	format := flag.String("format", "text", "output format: text or ndjson")
	publish := flag.Bool("publish", false, "also publish detections to the configured Kafka detections topic")
	flag.Parse()

	if *format != "text" && *format != "ndjson" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(1)
	}

	detector, err := eew.NewDetectorFromWindows(*sta, *lta, *rate, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	records, err := loadRecords(*input, *simulate, *country, *date, *hour, *bucket, *region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no records to analyze")
		os.Exit(1)
	}

	var detections []eew.Detection
	for i := range records {
		detections = append(detections, detector.Detect(&records[i])...)
	}

	if err := printDetections(detections, len(records), *format); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *publish && len(detections) > 0 {
		if err := publishDetections(detections); err != nil {
			fmt.Fprintf(os.Stderr, "error: publish detections: %v\n", err)
			os.Exit(1)
		}
	}
}

func publishDetections(detections []eew.Detection) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := writer.PublishDetections(ctx, detections); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "published %d detection(s) to %s\n", len(detections), cfg.KafkaDetectionsTopic)
	return nil
}

// loadRecords picks the record source: exactly one of -input, -simulate, or
// -country must be given.
func loadRecords(input string, simulate bool, country, date string, hour int, bucket, region string) ([]domain.AccelerometerRecord, error) {
	sources := 0
	if input != "" {
		sources++
	}
	if simulate {
		sources++
	}
	if country != "" {
		sources++
	}
	if sources != 1 {
		flag.Usage()
		return nil, fmt.Errorf("specify exactly one of -input, -simulate, or -country")
	}

	switch {
	case input != "":
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return openeew.DecodeRecords(f)
	case simulate:
		return []domain.AccelerometerRecord{simulatedRecord()}, nil
	default:
		return fetchArchive(country, date, hour, bucket, region)
	}
}

func fetchArchive(country, date string, hour int, bucket, region string) ([]domain.AccelerometerRecord, error) {
	if date == "" {
		return nil, fmt.Errorf("-date is required with -country")
	}
	if bucket == "" || region == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if bucket == "" {
			bucket = cfg.OpenEEWBucket
		}
		if region == "" {
			region = cfg.OpenEEWRegion
		}
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid -date: %w", err)
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("-hour must be 0-23, got %d", hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := openeew.NewClient(ctx, bucket, region, logger)
	if err != nil {
		return nil, err
	}

	at := day.Add(time.Duration(hour) * time.Hour)
	fmt.Fprintf(os.Stderr, "fetching %s records for %s...\n", country, at.Format("2006-01-02 15:00 UTC"))
	return client.FetchHour(ctx, country, at)
}

// simulatedRecord builds ten seconds of quiet sensor noise with a strong
// shake injected at the eight second mark.
func simulatedRecord() domain.AccelerometerRecord {
	const seconds = 10
	rng := rand.New(rand.NewSource(42))
	sampleRate := float64(domain.DefaultSampleRate)
	n := int(seconds * sampleRate)

	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64() * 0.05
		y[i] = rng.NormFloat64() * 0.05
		z[i] = rng.NormFloat64() * 0.05
	}

	// Decaying oscillation peaking around 25 gals.
	onset := int(8 * domain.DefaultSampleRate)
	for i := onset; i < n; i++ {
		t := float64(i-onset) / domain.DefaultSampleRate
		amp := 25.0 * math.Exp(-2.0*t) * math.Sin(2*math.Pi*5*t)
		x[i] += amp
		y[i] += amp * 0.6
		z[i] += amp * 0.3
	}

	return domain.AccelerometerRecord{
		DeviceID:   "simulated",
		Timestamp:  float64(time.Now().Unix()),
		X:          x,
		Y:          y,
		Z:          z,
		SampleRate: domain.DefaultSampleRate,
	}
}

func printDetections(detections []eew.Detection, recordCount int, format string) error {
	if format == "ndjson" {
		enc := json.NewEncoder(os.Stdout)
		for i := range detections {
			if err := enc.Encode(&detections[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if len(detections) == 0 {
		fmt.Printf("no shaking detected in %d record(s)\n", recordCount)
		return nil
	}

	fmt.Printf("%d detection(s) in %d record(s):\n\n", len(detections), recordCount)
	for _, d := range detections {
		sec := int64(d.Timestamp)
		nsec := int64((d.Timestamp - float64(sec)) * 1e9)
		at := time.Unix(sec, nsec).UTC()

		mag := "n/a"
		if d.EstimatedMagnitude != nil {
			mag = fmt.Sprintf("%.1f", *d.EstimatedMagnitude)
		}
		fmt.Printf("  %s  device=%s  pga=%.2fgal  ratio=%.2f  level=%s  est_mag=%s\n",
			at.Format(time.RFC3339), d.DeviceID, d.PGA, d.Ratio, d.AlertLevel, mag)
	}
	return nil
}
