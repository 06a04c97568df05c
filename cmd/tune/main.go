// Package main tunes particle parameters with CMA-ES so a lake's flow hits
// target reset rate, trail length and speed statistics.
//
// Usage: go run ./cmd/tune --output runs/tune --grid lake.nc
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/lakeflow/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval       int     `csv:"eval"`
	Fitness    float64 `csv:"fitness"`
	SpeedScale float64 `csv:"speed_scale"`
	MaxAge     float64 `csv:"max_age"`
	MaxHistory float64 `csv:"max_history"`
	ResetRate  float64 `csv:"reset_rate"`
	TrailMean  float64 `csv:"trail_mean"`
	SpeedP50   float64 `csv:"speed_p50"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	gridPath := flag.String("grid", "", "Velocity grid (.csv or .nc); empty uses the synthetic lake")
	ticks := flag.Int("ticks", 1500, "Ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	targetReset := flag.Float64("target-reset-rate", 0.02, "Target resets per particle per tick (0 = ignore)")
	targetTrail := flag.Float64("target-trail", 7, "Target mean trail length in points (0 = ignore)")
	targetSpeed := flag.Float64("target-speed", 0, "Target median speed in grid units per tick (0 = ignore)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Runs log through slog; keep only warnings while tuning
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// Short windows give the score several samples per run
	baseCfg.Telemetry.StatsWindow = max(*ticks/10, 1)

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	targets := Targets{ResetRate: *targetReset, TrailMean: *targetTrail, SpeedP50: *targetSpeed}
	evaluator := NewFitnessEvaluator(params, *ticks, evalSeeds, baseCfg, *gridPath, targets)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	logRow := rowWriter(logFile)

	evalCount := 0
	bestFitness := failedFitness
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness || bestParams == nil {
				bestFitness = fitness
				bestParams = clamped
			}

			mean := evaluator.LastMean()
			if err := logRow(evalRecord{
				Eval:       evalCount,
				Fitness:    fitness,
				SpeedScale: clamped[0],
				MaxAge:     clamped[1],
				MaxHistory: clamped[2],
				ResetRate:  mean.ResetRate,
				TrailMean:  mean.TrailMean,
				SpeedP50:   mean.SpeedP50,
			}); err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: fitness=%.4f reset=%.4f trail=%.2f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, mean.ResetRate, mean.TrailMean, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", *seeds, *ticks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %g\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

// rowWriter returns a function appending records to w, header first.
func rowWriter(w io.Writer) func(evalRecord) error {
	headerWritten := false
	return func(r evalRecord) error {
		rows := []evalRecord{r}
		if !headerWritten {
			headerWritten = true
			return gocsv.Marshal(rows, w)
		}
		return gocsv.MarshalWithoutHeaders(rows, w)
	}
}
