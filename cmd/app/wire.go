//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/matevzk/povzetek/internal/bootstrap"
	"github.com/matevzk/povzetek/internal/domain/generation"
	"github.com/matevzk/povzetek/internal/domain/grounding"
	"github.com/matevzk/povzetek/internal/domain/models"
	"github.com/matevzk/povzetek/internal/domain/summaries"
	"github.com/matevzk/povzetek/internal/infra/config"
	"github.com/matevzk/povzetek/internal/infra/lemmatizer"
	"github.com/matevzk/povzetek/internal/infra/llm/upstream"
	httpiface "github.com/matevzk/povzetek/internal/interface/http"
	"github.com/matevzk/povzetek/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideGenerationConfig,
		provideUpstreamClient,
		provideLemmatizerClient,
		provideAnalysisCache,
		provideSummaryStorage,
		provideSummaryRepository,
		provideSettingsRepository,
		generation.NewService,
		grounding.NewService,
		summaries.NewService,
		models.NewService,
		wire.Bind(new(generation.ChatClient), new(*upstream.Client)),
		wire.Bind(new(models.ModelClient), new(*upstream.Client)),
		wire.Bind(new(grounding.AnalyzerClient), new(*lemmatizer.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
