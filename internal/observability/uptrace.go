package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"
	"github.com/wielerspel/peloton-api/internal/config"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
)

// InitUptrace configures global OpenTelemetry providers for Uptrace.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return func(context.Context) error { return nil }, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.AppName),
		uptrace.WithDeploymentEnvironment(string(cfg.AppEnv)),
	)

	logger.Info("uptrace enabled",
		"service_name", cfg.AppName,
		"environment", string(cfg.AppEnv),
	)

	return uptrace.Shutdown, nil
}
