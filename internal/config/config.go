// Package config defines process configuration and how it is loaded.
package config

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// EventID names the event whose deliberations this process owns.
	EventID string `koanf:"event_id" validate:"required"`

	// QueueSize bounds the writer's job queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// DedupeSize is how many recent command and event ids are remembered.
	// Zero keeps all of them.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// StoreDriver selects the authoritative state store.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite"`

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=StoreDriver sqlite"`

	// SeasonFile points at a season YAML; empty uses the built-in season.
	SeasonFile string `koanf:"season_file"`

	// PicklistMax and PicklistMultiplier bound picklist capacity at
	// min(max, ceil(teams*multiplier)).
	PicklistMax        int     `koanf:"picklist_max" validate:"gt=0"`
	PicklistMultiplier float64 `koanf:"picklist_multiplier" validate:"gt=0,lte=1"`

	// ChampionsCandidates sizes the champions pool. Zero uses the
	// champions award count.
	ChampionsCandidates int `koanf:"champions_candidates" validate:"gte=0"`

	// ExemptAwards may be won alongside any other award.
	ExemptAwards []string `koanf:"exempt_awards" validate:"dive,required"`

	// AutoAssignedAward is filled automatically when core awards close.
	AutoAssignedAward string `koanf:"auto_assigned_award"`

	// AdvancementPercent is the share of teams, champions included, that
	// advance. Zero disables advancement.
	AdvancementPercent float64 `koanf:"advancement_percent" validate:"gte=0,lte=100"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		EventID:            "default",
		QueueSize:          1024,
		DedupeSize:         10_000,
		StoreDriver:        StoreMemory,
		SQLitePath:         "deliberation.db",
		PicklistMax:        12,
		PicklistMultiplier: 0.35,
		ExemptAwards:       []string{"robot-performance", "advancement"},
		AutoAssignedAward:  "excellence-in-engineering",
	}
}
