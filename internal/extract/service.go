package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/project"
	"github.com/iwvelando/project-appraisal/internal/report"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"go.uber.org/zap"
)

// Options configures a Service.
type Options struct {
	// Store caches extractions and analyses; nil disables caching.
	Store cache.Store
	TTL   time.Duration
	// Timeout bounds each provider call; zero uses the default.
	Timeout time.Duration
	Report  report.Options
}

// Service runs extractions and analyses against a Provider.
type Service struct {
	provider Provider
	opts     Options
	logger   *zap.Logger
}

// NewService creates a service. A nil provider makes every call return
// ErrProviderDisabled.
func NewService(provider Provider, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = cache.NopStore{}
	}
	if opts.TTL == 0 {
		opts.TTL = constants.DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultAITimeout
	}
	if opts.Report.Currency == "" {
		opts.Report = report.DefaultOptions()
	}
	return &Service{provider: provider, opts: opts, logger: logger}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// ExtractProjectData asks the model for the project figures stated in text.
// Results are cached by the exact text.
func (s *Service) ExtractProjectData(ctx context.Context, text string) (project.Input, error) {
	if s.provider == nil {
		return project.Input{}, ErrProviderDisabled
	}
	if strings.TrimSpace(text) == "" {
		return project.Input{}, ErrEmptyText
	}

	key := cache.TextKey(s.provider.Name()+"/extract", text)
	var cached project.Input
	if cache.GetJSON(ctx, s.opts.Store, key, &cached, s.logger) {
		s.logger.Debug("extraction served from cache",
			zap.String("op", "extract.ExtractProjectData"),
		)
		return cached, nil
	}

	prompt, err := render(extractionTemplate, extractionData{Text: text, Currency: s.opts.Report.Currency})
	if err != nil {
		return project.Input{}, err
	}

	response, err := s.generate(ctx, Request{Prompt: prompt, JSON: true})
	if err != nil {
		return project.Input{}, err
	}

	in, err := ParseExtraction(response)
	if err != nil {
		s.logger.Warn("could not use ai extraction",
			zap.String("op", "extract.ExtractProjectData"),
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return project.Input{}, err
	}

	cache.SetJSON(ctx, s.opts.Store, key, in, s.opts.TTL, s.logger)
	s.logger.Info("project data extracted",
		zap.String("op", "extract.ExtractProjectData"),
		zap.String("provider", s.provider.Name()),
		zap.Int("textLength", len(text)),
	)
	return in, nil
}

// AnalyzeMetrics asks the model for a markdown narrative of a. Sentinel
// metrics are passed as their display text.
func (s *Service) AnalyzeMetrics(ctx context.Context, a appraisal.Appraisal) (string, error) {
	if s.provider == nil {
		return "", ErrProviderDisabled
	}

	ro := s.opts.Report
	key := cache.TextKey(s.provider.Name()+"/analyze/"+ro.Locale, cache.Key(a.Parameters))
	var cached string
	if cache.GetJSON(ctx, s.opts.Store, key, &cached, s.logger) {
		return cached, nil
	}

	prompt, err := render(analysisTemplate, s.analysisData(a))
	if err != nil {
		return "", err
	}

	response, err := s.generate(ctx, Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	response = CleanMarkdown(response)

	cache.SetJSON(ctx, s.opts.Store, key, response, s.opts.TTL, s.logger)
	return response, nil
}

func (s *Service) analysisData(a appraisal.Appraisal) analysisData {
	ro := s.opts.Report
	text := report.FormatMetrics(a, ro)
	in := project.FromParameters(a.Parameters)

	return analysisData{
		Vietnamese: strings.EqualFold(ro.Locale, "vi"),
		Investment: report.Money(in.InitialInvestment, ro),
		Lifespan:   in.LifespanYears,
		Revenue:    report.Money(in.AnnualRevenue, ro),
		Cost:       report.Money(in.AnnualOperatingCost, ro),
		WACC:       fmt.Sprintf("%.2f%%", in.WACC),
		TaxRate:    fmt.Sprintf("%.2f%%", in.TaxRate),
		NPV:        text.NPV,
		IRR:        text.IRR,
		PP:         text.PP,
		DPP:        text.DPP,
	}
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	response, err := s.provider.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ai provider %s: %w", s.provider.Name(), err)
	}
	s.logger.Debug("ai response received",
		zap.String("op", "extract.generate"),
		zap.String("provider", s.provider.Name()),
		zap.Bool("json", req.JSON),
		zap.Duration("elapsed", time.Since(start)),
	)

	if strings.TrimSpace(response) == "" {
		return "", ErrEmptyResponse
	}
	return response, nil
}
