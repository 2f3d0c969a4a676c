// Command replay runs the offline batch driver: it feeds a directory of
// already-extracted frames through the same windowing, oracle, and rule
// resolution path as the live pipeline and prints one JSON WindowResult per
// line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/scenewatch/vision-backend/internal/automation"
	"github.com/scenewatch/vision-backend/internal/oracle"
	"github.com/scenewatch/vision-backend/internal/pipeline"
)

func main() {
	var (
		framesDir   = flag.String("frames-dir", "", "directory containing extracted .jpg frames, sorted by name")
		rulesPath   = flag.String("rules", "data/automation_rules.json", "path to JSON containing 'actions' and 'rules'")
		fps         = flag.Float64("fps", 2.0, "effective frame rate of the extracted frames")
		windowSize  = flag.Int("window", 4, "frames per analysis window")
		stepSize    = flag.Int("step", 4, "frames to advance between windows")
		baseURL     = flag.String("base-url", "http://localhost:8080/v1", "OpenAI-compatible endpoint")
		apiKey      = flag.String("api-key", "no-key-needed", "API key for the endpoint")
		visionModel = flag.String("model", "lfm2-vl-450m-f16", "vision model name")
		policyModel = flag.String("policy-model", "", "text-only policy model (defaults to --model)")
		realtime    = flag.Bool("realtime", false, "pace windows at step/fps seconds")
		verbose     = flag.Bool("verbose", false, "log progress to stderr")
	)
	flag.Parse()

	if *framesDir == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -frames-dir")
		flag.Usage()
		os.Exit(2)
	}

	logOut := io.Writer(io.Discard)
	if *verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	frames, err := loadFrames(*framesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load frames: %v\n", err)
		os.Exit(1)
	}

	seed, err := automation.LoadFile(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load automation config: %v\n", err)
		os.Exit(1)
	}
	store := automation.NewStore(*seed, logger)

	orc := oracle.NewClient(oracle.Config{
		BaseURL:     *baseURL,
		APIKey:      *apiKey,
		VisionModel: *visionModel,
		PolicyModel: *policyModel,
	}, logger)

	cfg := pipeline.BatchConfig{
		Assembler: pipeline.AssemblerConfig{
			WindowSize: *windowSize,
			StepSize:   *stepSize,
			FPS:        *fps,
		},
		Realtime: *realtime,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	start := time.Now()

	err = pipeline.RunBatch(ctx, frames, cfg, orc, store, logger, func(res pipeline.WindowResult) error {
		return enc.Encode(res)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
		os.Exit(1)
	}

	logger.Info("replay complete", "frames", len(frames), "elapsed", time.Since(start))
}

func loadFrames(dir string) ([][]byte, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .jpg frames found in %s", dir)
	}
	sort.Strings(paths)

	frames := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", p, err)
		}
		frames = append(frames, data)
	}
	return frames, nil
}
