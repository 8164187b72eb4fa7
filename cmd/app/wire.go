//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/smart-energy/internal/bootstrap"
	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/internal/infra/config"
	httpiface "github.com/yanqian/smart-energy/internal/interface/http"
	"github.com/yanqian/smart-energy/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideLocation,
		provideTariffTable,
		provideUsageConfig,
		provideBillingConfig,
		provideInsightConfig,
		provideNotificationConfig,
		provideNotificationStore,
		providePublisher,
		provideStatementStore,
		usage.NewService,
		billing.NewService,
		provideInsightService,
		provideNotificationService,
		provideScheduler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
