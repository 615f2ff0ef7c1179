package app

import (
	"context"
	"errors"
	"image"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
	"grain-analyzer/internal/logger"
)

const component = "analysis"

type AnalysisService struct {
	users    *UserService
	analyzer port.GrainAnalyzer
	codec    port.ImageCodec
	reporter port.ReportFormatter
	masks    port.MaskSource
	log      logger.Logger
	defaults entity.AnalysisConfig
	workers  int
}

// Options параметры сервиса анализа.
type Options struct {
	Defaults entity.AnalysisConfig // базовая конфигурация; фазу и радиус задаёт пользователь
	Workers  int                   // число параллельных анализов в пакете
	Log      logger.Logger
}

// AnalysisOutput содержит результат анализа, таблицу измерений и размеченное изображение.
type AnalysisOutput struct {
	RunID   string
	Result  *entity.LabeledResult
	Report  string
	Labeled []byte // PNG
}

// BatchInput один снимок пакета.
type BatchInput struct {
	Name string
	Data []byte
}

// BatchOutcome результат анализа одного снимка пакета; ошибка снимка не прерывает пакет.
type BatchOutcome struct {
	Name   string
	Output *AnalysisOutput
	Err    error
}

// NewAnalysisService создаёт сервис, который управляет анализом снимков.
func NewAnalysisService(users *UserService, analyzer port.GrainAnalyzer, codec port.ImageCodec,
	reporter port.ReportFormatter, masks port.MaskSource, opts Options) *AnalysisService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Defaults.Phase == "" {
		opts.Defaults = entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	}
	return &AnalysisService{
		users:    users,
		analyzer: analyzer,
		codec:    codec,
		reporter: reporter,
		masks:    masks,
		log:      opts.Log,
		defaults: opts.Defaults,
		workers:  opts.Workers,
	}
}

// Defaults возвращает базовую конфигурацию анализа.
func (s *AnalysisService) Defaults() entity.AnalysisConfig {
	return s.defaults
}

// AnalyzeImage декодирует снимок и запускает анализ с заданной конфигурацией.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, data []byte, cfg entity.AnalysisConfig) (*AnalysisOutput, error) {
	if s.codec == nil {
		return nil, errors.New("image codec is not configured")
	}
	gray, err := s.codec.DecodeGray(data)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, gray, cfg)
}

// AnalyzeForUser анализирует снимок с настройками пользователя и возвращает его в главное меню.
func (s *AnalysisService) AnalyzeForUser(ctx context.Context, userID, chatID int64, data []byte) (*AnalysisOutput, error) {
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	cfg := user.AnalysisConfig(s.defaults)

	out, err := s.AnalyzeImage(ctx, data, cfg)
	if _, stateErr := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); stateErr != nil && err == nil {
		err = stateErr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeBatch анализирует снимки параллельно, не более workers одновременно.
// Порядок результатов совпадает с порядком входа.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, inputs []BatchInput, cfg entity.AnalysisConfig) ([]BatchOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]BatchOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			out, err := s.AnalyzeImage(gctx, in.Data, cfg)
			if err != nil {
				s.log.Warning(component, "image skipped", logger.Fields{"name": in.Name, "error": err.Error()})
			}
			outcomes[i] = BatchOutcome{Name: in.Name, Output: out, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, ctx.Err()
}

// AnalyzeSample объединяет все маски образца и анализирует результат.
func (s *AnalysisService) AnalyzeSample(ctx context.Context, sample string, cfg entity.AnalysisConfig) (*AnalysisOutput, error) {
	if s.masks == nil {
		return nil, errors.New("mask source is not configured")
	}
	gray, err := s.masks.LoadSample(ctx, sample)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, gray, cfg)
}

func (s *AnalysisService) run(ctx context.Context, gray *image.Gray, cfg entity.AnalysisConfig) (*AnalysisOutput, error) {
	if s.analyzer == nil {
		return nil, errors.New("analyzer is not configured")
	}
	if gray == nil {
		return nil, entity.NewInvalidInput("no image")
	}
	runID := uuid.NewString()
	s.log.Debug(component, "analysis started", logger.Fields{
		"run_id": runID,
		"phase":  string(cfg.Phase),
		"width":  gray.Bounds().Dx(),
		"height": gray.Bounds().Dy(),
	})

	result, err := s.analyzer.Analyze(ctx, gray, cfg)
	if err != nil {
		s.log.Error(component, err, logger.Fields{"run_id": runID})
		return nil, err
	}

	out := &AnalysisOutput{RunID: runID, Result: result}
	if s.reporter != nil {
		out.Report = s.reporter.Format(result)
	}
	if s.codec != nil && result.Image != nil {
		// ошибка кодирования не прерывает анализ, таблица уже готова
		labeled, err := s.codec.EncodePNG(result.Image)
		if err != nil {
			s.log.Warning(component, "labeled image is not encoded", logger.Fields{"run_id": runID, "error": err.Error()})
		}
		out.Labeled = labeled
	}
	return out, nil
}
