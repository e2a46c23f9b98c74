package cmd

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/ai/gemini"
	"github.com/spigell/skillbuddy/internal/jobsearch"
	"github.com/spigell/skillbuddy/internal/logger"
	"github.com/spigell/skillbuddy/internal/profile"
	"github.com/spigell/skillbuddy/internal/secrets"
)

// env carries what every command needs.
type env struct {
	config    *Config
	logger    *zap.Logger
	generator *gemini.Generator
}

func setup(ctx context.Context) *env {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("app", app), zap.String("version", version))

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxLogLength, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	return &env{config: config, logger: logger, generator: generator}
}

func (e *env) jobSearch() *jobsearch.Client {
	cfg := e.config.JobSearch
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "serpapi key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "SERPAPI_KEY",
	})
	if err != nil {
		e.logger.Fatal(
			"loading serpapi key",
			zap.Error(err),
			zap.String("hint", "set SERPAPI_KEY, SERPAPI_KEY_FILE or the 'serpapi.api-key-file' key in the configuration file"),
		)
	}

	client, err := jobsearch.New(jobsearch.Config{
		APIKey:     apiKey,
		Endpoint:   cfg.Endpoint,
		Quota:      cfg.Quota,
		CacheTTL:   cfg.CacheTTL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}, e.logger)
	if err != nil {
		e.logger.Fatal("creating job search client", zap.Error(err))
	}
	return client
}

// loadProfile reads a saved profile, or extracts one from the resume.
func (e *env) loadProfile(ctx context.Context) *profile.Profile {
	switch {
	case profilePath != "":
		doc, err := profile.Load(profilePath)
		if err != nil {
			e.logger.Fatal("loading profile", zap.String("path", profilePath), zap.Error(err))
		}
		return &doc.Profile
	case resumePath != "":
		text := e.readResume()
		p, err := profile.NewAnalyzer(e.generator, e.logger).Extract(ctx, text, targetRole)
		if err != nil {
			e.fatal("extracting profile", err)
		}
		return p
	default:
		e.logger.Fatal("no candidate data", zap.Error(errors.New("either --resume or --profile is required")))
		return nil
	}
}

// optionalProfile is loadProfile for commands that work without candidate data.
func (e *env) optionalProfile(ctx context.Context) *profile.Profile {
	if profilePath == "" && resumePath == "" {
		return nil
	}
	return e.loadProfile(ctx)
}

func (e *env) readResume() string {
	if resumePath == "" {
		e.logger.Fatal("no resume", zap.Error(errors.New("--resume is required")))
	}
	text, err := profile.ReadResume(resumePath)
	if err != nil {
		e.logger.Fatal("reading resume", zap.String("path", resumePath), zap.Error(err))
	}
	return text
}

func (e *env) role() string {
	if role := strings.TrimSpace(targetRole); role != "" {
		return role
	}
	return strings.TrimSpace(e.config.Interview.TargetRole)
}

// fatal logs a backend failure with an operator hint and exits.
func (e *env) fatal(msg string, err error) {
	e.logger.Fatal(msg,
		zap.Stringer("kind", ai.Classify(err)),
		zap.String("hint", ai.Describe(err)),
		zap.Error(err),
	)
}
