// Package main консольная утилита анализа снимков шлифов без Telegram.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"grain-analyzer/config"
	app "grain-analyzer/internal/application"
	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/imageio"
	"grain-analyzer/internal/infrastructure/report"
	"grain-analyzer/internal/infrastructure/storage"
	"grain-analyzer/internal/infrastructure/vision"
	"grain-analyzer/internal/infrastructure/vision/metrics"
	"grain-analyzer/internal/logger"
)

const (
	// Flags.
	flagPhase     = "phase"
	flagThreshold = "threshold"
	flagMinArea   = "min-area"
	flagRadius    = "radius"
	flagTrace     = "trace"
	flagOut       = "out"
	flagWorkers   = "workers"
	flagSample    = "sample"
	flagMaskRoot  = "mask-root"
	flagSmooth    = "smooth"
	flagRows      = "rows"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var log logger.Logger = logger.Nop()

	return &cli.App{
		Name:  "grainctl",
		Usage: "quantify grains on metallographic images",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.WarnLevel
			if c.Bool("debug") {
				level = zerolog.DebugLevel
			}
			log = logger.NewConsoleLogger(level)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "trace, measure and label grains",
				ArgsUsage: "<image> [image...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagPhase, Value: string(entity.PhaseFerrite), Usage: "phase: ferrite or perlite"},
					&cli.IntFlag{Name: flagThreshold, Usage: "binarization threshold, inclusive"},
					&cli.Float64Flag{Name: flagMinArea, Usage: "minimum contour area"},
					&cli.IntFlag{Name: flagRadius, Usage: "ferrite boundary expansion radius"},
					&cli.StringFlag{Name: flagTrace, Usage: "contour selection: external or tree"},
					&cli.StringFlag{Name: flagOut, Usage: "directory for labeled images"},
					&cli.IntFlag{Name: flagWorkers, Usage: "parallel analyses"},
					&cli.StringFlag{Name: flagSample, Usage: "analyze the merged masks of `SAMPLE` instead of files"},
					&cli.StringFlag{Name: flagMaskRoot, Usage: "directory with per-sample segmentation masks"},
					&cli.IntFlag{Name: flagRows, Value: 0, Usage: "maximum table rows, 0 shows all"},
				},
				Action: func(c *cli.Context) error {
					return analyzeAction(c, log)
				},
			},
			{
				Name:      "merge-masks",
				Usage:     "merge segmentation masks with logical OR",
				ArgsUsage: "<mask> [mask...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagOut, Required: true, Usage: "output PNG `FILE`"},
					&cli.IntFlag{Name: flagThreshold, Value: config.DefaultMaskThreshold, Usage: "mask binarization threshold"},
				},
				Action: mergeMasksAction,
			},
			{
				Name:      "compare",
				Usage:     "Dice and IoU between a predicted and a ground-truth mask",
				ArgsUsage: "<predicted> <truth>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagThreshold, Value: config.DefaultMaskThreshold, Usage: "mask binarization threshold"},
					&cli.Float64Flag{Name: flagSmooth, Value: metrics.DefaultSmooth, Usage: "smoothing term"},
				},
				Action: compareAction,
			},
		},
	}
}

// analysisConfig накладывает флаги на конфигурацию окружения.
func analysisConfig(c *cli.Context, base entity.AnalysisConfig) (entity.AnalysisConfig, error) {
	phase, err := entity.ParsePhaseMode(c.String(flagPhase))
	if err != nil {
		return entity.AnalysisConfig{}, err
	}
	cfg := base
	cfg.Phase = phase
	if c.IsSet(flagThreshold) {
		cfg.Threshold = c.Int(flagThreshold)
	}
	if c.IsSet(flagMinArea) {
		cfg.MinContourArea = c.Float64(flagMinArea)
	}
	if c.IsSet(flagRadius) {
		cfg = cfg.WithExpansion(c.Int(flagRadius))
	}
	if c.IsSet(flagTrace) {
		mode, err := entity.ParseTraceMode(c.String(flagTrace))
		if err != nil {
			return entity.AnalysisConfig{}, err
		}
		cfg.TraceMode = mode
	}
	return cfg, cfg.Validate()
}

func analyzeAction(c *cli.Context, log logger.Logger) error {
	env, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err := analysisConfig(c, env.Analysis)
	if err != nil {
		return err
	}

	workers := env.Workers
	if c.IsSet(flagWorkers) {
		workers = c.Int(flagWorkers)
	}
	maskRoot := env.MaskRoot
	if c.IsSet(flagMaskRoot) {
		maskRoot = c.String(flagMaskRoot)
	}

	svc := app.NewAnalysisService(
		app.NewUserService(storage.NewMemoryUserRepository()),
		vision.NewEngine(log),
		imageio.NewCodec(),
		report.NewTableFormatter(c.Int(flagRows)),
		imageio.NewDirMaskSource(maskRoot, uint8(env.MaskThreshold)),
		app.Options{Defaults: cfg, Workers: workers, Log: log},
	)

	if sample := c.String(flagSample); sample != "" {
		out, err := svc.AnalyzeSample(c.Context, sample, cfg)
		if err != nil {
			return err
		}
		return emit(c, sample, out)
	}

	if c.Args().Len() == 0 {
		return cli.Exit("no images given", 2)
	}

	inputs := make([]app.BatchInput, 0, c.Args().Len())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, app.BatchInput{Name: path, Data: data})
	}

	outcomes, err := svc.AnalyzeBatch(c.Context, inputs, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", o.Name, o.Err)
			continue
		}
		if err := emit(c, o.Name, o.Output); err != nil {
			return err
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d images failed", failed, len(outcomes)), 1)
	}
	return nil
}

// emit печатает таблицу и сохраняет размеченное изображение.
func emit(c *cli.Context, name string, out *app.AnalysisOutput) error {
	fmt.Fprintf(c.App.Writer, "%s (run %s)\n%s\n\n", name, out.RunID, out.Report)

	dir := c.String(flagOut)
	if dir == "" || len(out.Labeled) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return os.WriteFile(filepath.Join(dir, base+"_labeled.png"), out.Labeled, 0o644)
}

func mergeMasksAction(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return cli.Exit("no masks given", 2)
	}
	threshold, err := maskThreshold(c)
	if err != nil {
		return err
	}

	m, err := imageio.MergeMasks(c.Context, c.Args().Slice(), threshold)
	if err != nil {
		return err
	}
	data, err := imageio.NewCodec().EncodePNG(m.ToGray())
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String(flagOut), data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "merged %d masks: %d foreground pixels\n", c.Args().Len(), m.Count())
	return nil
}

func compareAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("expected <predicted> <truth>", 2)
	}
	threshold, err := maskThreshold(c)
	if err != nil {
		return err
	}

	pred, err := imageio.LoadMask(c.Args().Get(0), threshold)
	if err != nil {
		return err
	}
	truth, err := imageio.LoadMask(c.Args().Get(1), threshold)
	if err != nil {
		return err
	}

	a, err := metrics.Compare(pred, truth)
	if err != nil {
		return err
	}
	smooth := c.Float64(flagSmooth)
	fmt.Fprintf(c.App.Writer, "dice %.4f\niou  %.4f\n", a.Dice(smooth), a.IoU(smooth))
	return nil
}

func maskThreshold(c *cli.Context) (uint8, error) {
	t := c.Int(flagThreshold)
	if t < 0 || t > 255 {
		return 0, entity.NewConfigurationError("threshold", "%d is outside [0,255]", t)
	}
	return uint8(t), nil
}
