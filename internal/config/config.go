package config

import "github.com/preston-bernstein/scorekeeper-service/internal/palette"

// Config holds runtime configuration for the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	Match     MatchConfig
	Events    EventsConfig
	Metrics   MetricsConfig
}

// MatchConfig controls how the match session starts.
type MatchConfig struct {
	PaletteRevision string
	PaletteFile     string
	HomeTeamName    string
	AwayTeamName    string
}

// EventsConfig controls change-event fan-out.
type EventsConfig struct {
	Buffer    int
	Heartbeat Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:      envOrDefault(envPort, defaultPort),
		LogLevel:  envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat: envOrDefault(envLogFormat, defaultLogFormat),
		Match:     loadMatch(),
		Events: EventsConfig{
			Buffer:    intEnvOrDefault(envEventBuffer, defaultEventBuffer),
			Heartbeat: durationEnvOrDefault(envEventHeartbeat, defaultEventHeartbeat),
		},
		Metrics: loadMetrics(),
	}
}

func loadMatch() MatchConfig {
	return MatchConfig{
		PaletteRevision: envOrDefault(envPaletteRevision, palette.DefaultRevision),
		PaletteFile:     envOrDefault(envPaletteFile, ""),
		HomeTeamName:    envOrDefault(envHomeTeamName, ""),
		AwayTeamName:    envOrDefault(envAwayTeamName, ""),
	}
}

// Catalogue resolves the palette catalogue: a file when configured, otherwise a built-in revision.
func (m MatchConfig) Catalogue() (palette.Catalogue, error) {
	if m.PaletteFile != "" {
		return palette.LoadFile(m.PaletteFile)
	}
	return palette.Builtin(m.PaletteRevision)
}
