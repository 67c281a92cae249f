package config

import "time"

const (
	envPort            = "PORT"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envMetricsPort     = "METRICS_PORT"
	envMetricsOn       = "METRICS_ENABLED"
	envOtelEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService     = "OTEL_SERVICE_NAME"
	envOtelInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"
	envPaletteRevision = "PALETTE_REVISION"
	envPaletteFile     = "PALETTE_FILE"
	envHomeTeamName    = "HOME_TEAM_NAME"
	envAwayTeamName    = "AWAY_TEAM_NAME"
	envEventBuffer     = "EVENT_BUFFER"
	envEventHeartbeat  = "EVENT_HEARTBEAT"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultMetricsPort = "9090"
	defaultServiceName = "scorekeeper-service"
	// Buffered per subscriber so a slow stream client does not stall publishing.
	defaultEventBuffer    = 64
	defaultEventHeartbeat = 15 * Duration(time.Second)
)
