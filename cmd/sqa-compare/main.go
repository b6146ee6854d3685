// Command sqa-compare compares local SQA reports and prints the comparison as JSON.
//
//	sqa-compare [flags] baseline.csv candidate.xlsx [more reports...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
	"go-sqa-metrics/internal/pipeline"
)

func main() {
	baseline := flag.Int("baseline", 0, "index of the baseline report")
	metrics := flag.String("metrics", "", "comma-separated metrics to compare (default: all common metrics)")
	noiseTypes := flag.String("noise", "", "comma-separated noise types to keep")
	dbLevels := flag.String("levels", "", "comma-separated dB/SNR levels to keep")
	fileQuery := flag.String("file", "", "keep rows whose file name contains this text")
	threshold := flag.Float64("threshold", 0, "difference needed to count as improved or degraded")
	sampleRows := flag.Int("sample", 10, "rows sampled when detecting metric columns")
	htmlOut := flag.String("html", "", "write an HTML chart to this path")
	pngOut := flag.String("png", "", "write a PNG chart to this path")
	kind := flag.String("kind", pipeline.ChartBar, "HTML chart kind: bar or line")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Parse()

	if *verbose {
		monitoring.SetLogger(log.New(os.Stderr, "", log.LstdFlags).Printf)
	} else {
		monitoring.SetLogger(nil)
	}

	paths := flag.Args()
	if len(paths) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sqa-compare [flags] report1 report2 [report3...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sets, err := loadReports(ctx, paths)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	opts := pipeline.CompareOptions{
		Baseline:   *baseline,
		Metrics:    splitList(*metrics),
		Threshold:  *threshold,
		SampleRows: *sampleRows,
	}
	filter := model.FilterSpec{
		NoiseTypes:    splitList(*noiseTypes),
		DBLevels:      splitList(*dbLevels),
		FileNameQuery: *fileQuery,
	}
	if !filter.IsEmpty() {
		opts.Filter = &filter
	}

	cmp, err := pipeline.Compare(sets, opts)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cmp.HasWarning(model.WarningNoCommonMetrics) {
		fmt.Fprintln(os.Stderr, "⚠️ the reports share no metric column")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cmp); err != nil {
		log.Fatalf("❌ %v", err)
	}

	chart := pipeline.ShapeComparison(cmp, model.DimensionMetric)
	if *htmlOut != "" {
		if err := writeChart(*htmlOut, func(f *os.File) error {
			return pipeline.RenderHTML(f, chart, *kind, "Metric comparison")
		}); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	if *pngOut != "" {
		if err := writeChart(*pngOut, func(f *os.File) error {
			return pipeline.RenderPNG(f, chart, "Metric comparison")
		}); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
}

// loadReports reads every report concurrently, naming each result after its file.
func loadReports(ctx context.Context, paths []string) ([]model.ResultSet, error) {
	sets := make([]model.ResultSet, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			src := &pipeline.FileSource{Dir: filepath.Dir(path)}
			ds, err := src.FetchRows(gctx, filepath.Base(path))
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			sets[i] = model.ResultSet{Name: name, Dataset: ds}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func writeChart(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
