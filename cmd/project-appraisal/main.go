package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/config"
	"github.com/iwvelando/project-appraisal/internal/extract"
	"github.com/iwvelando/project-appraisal/internal/project"
	"github.com/iwvelando/project-appraisal/internal/report"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// inputSources holds the command line project sources, highest precedence first.
type inputSources struct {
	textPath    string
	projectPath string
	example     string
}

var errNoProject = errors.New("no project given: use -text, -project, -example or a project section in the config file")

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	projectPath := flag.String("project", "", "path to a YAML project file")
	example := flag.String("example", "", "built-in sample project: "+strings.Join(project.SampleKeys(), ", "))
	textPath := flag.String("text", "", "path to a business plan text file for AI extraction")
	analyze := flag.Bool("analyze", false, "ask the AI model for a written analysis of the metrics")
	xlsxPath := flag.String("xlsx", "", "also write the appraisal as an Excel workbook to this path")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	depreciation := flag.Bool("depreciation", false, "subtract straight-line depreciation before tax and add it back to NCF")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()

	store, err := cache.NewStore(conf.CacheOptions())
	if err != nil {
		logger.Fatal("failed to open cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	if err := cache.Check(ctx, store, constants.CachePingTimeout); err != nil {
		logger.Warn("cache unreachable, continuing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	reportOpts := conf.ReportOptions()
	extractor, err := newExtractor(ctx, conf, store, logger)
	if err != nil {
		logger.Fatal("failed to create ai provider",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	sources := inputSources{textPath: *textPath, projectPath: *projectPath, example: *example}
	in, err := resolveInput(ctx, sources, conf, extractor)
	if err != nil {
		logger.Fatal("failed to obtain project parameters",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if *depreciation {
		in.DepreciationAddBack = true
	}

	params, err := project.Prepare(in)
	if err != nil {
		logger.Fatal("project rejected",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	memo := cache.NewMemoizer(store, conf.Cache.TTL, appraisal.NewEngine(logger), logger)
	result, _ := memo.Appraise(ctx, params)

	if err := render(os.Stdout, conf.Output.Format, result, reportOpts); err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *xlsxPath != "" {
		if err := writeWorkbook(*xlsxPath, result, reportOpts); err != nil {
			logger.Fatal("failed to write workbook",
				zap.String("op", "main"),
				zap.String("path", *xlsxPath),
				zap.Error(err),
			)
		}
		logger.Info("workbook written",
			zap.String("op", "main"),
			zap.String("path", *xlsxPath),
		)
	}

	if *analyze {
		analysis, err := extractor.AnalyzeMetrics(ctx, result)
		if err != nil {
			logger.Error("ai analysis failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return
		}
		fmt.Printf("\n%s\n", analysis)
	}
}

// newExtractor returns a service backed by Gemini when an API key is present,
// and a disabled service otherwise.
func newExtractor(ctx context.Context, conf *config.Configuration, store cache.Store, logger *zap.Logger) (*extract.Service, error) {
	opts := extract.Options{
		Store:   store,
		TTL:     conf.Cache.TTL,
		Timeout: conf.AI.Timeout,
		Report:  conf.ReportOptions(),
	}

	key := conf.APIKey()
	if key == "" {
		return extract.NewService(nil, opts, logger), nil
	}

	provider, err := extract.NewGeminiProvider(ctx, key, conf.AI.Model)
	if err != nil {
		return nil, err
	}
	return extract.NewService(provider, opts, logger), nil
}

// resolveInput picks the project from the highest ranked source given:
// business plan text, then a project file, then a sample, then the config.
func resolveInput(ctx context.Context, src inputSources, conf *config.Configuration, extractor *extract.Service) (project.Input, error) {
	switch {
	case src.textPath != "":
		data, err := os.ReadFile(src.textPath)
		if err != nil {
			return project.Input{}, fmt.Errorf("failed to read business plan: %w", err)
		}
		return extractor.ExtractProjectData(ctx, string(data))
	case src.projectPath != "":
		return project.LoadFile(src.projectPath)
	case src.example != "":
		sample, err := project.SampleByKey(src.example)
		if err != nil {
			return project.Input{}, err
		}
		return sample.Input, nil
	case conf != nil && conf.Project != nil:
		return *conf.Project, nil
	default:
		return project.Input{}, errNoProject
	}
}

func render(w io.Writer, outputFormat string, a appraisal.Appraisal, opts report.Options) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return report.CSV(w, a)
	case constants.OutputFormatJSON:
		return report.JSON(w, a, opts)
	case constants.OutputFormatPretty, "":
		return report.Pretty(w, a, opts)
	default:
		return validation.ValidateOutputFormat(outputFormat)
	}
}

func writeWorkbook(path string, a appraisal.Appraisal, opts report.Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return report.XLSX(file, a, opts)
}
