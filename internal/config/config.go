package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/normalize"
	"github.com/udisondev/craftplan/internal/plan"
	"github.com/udisondev/craftplan/internal/resolver"
)

// Config holds all configuration for craftplan.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	DataDir  string `yaml:"data_dir"`

	Matching MatchingConfig `yaml:"matching"`
	Tiers    TiersConfig    `yaml:"tiers"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
}

// MatchingConfig tunes text matching and route assembly.
type MatchingConfig struct {
	MinConfidence    float64 `yaml:"min_confidence"`
	MaxResults       int     `yaml:"max_results"`
	MaxAnnotations   int     `yaml:"max_annotations"`
	AlternativeDelta float64 `yaml:"alternative_delta"`
	MaxRoutes        int     `yaml:"max_routes"`

	// Aliases extends the built-in phrase table: alias -> canonical phrase.
	Aliases map[string]string `yaml:"aliases"`
}

// TiersConfig controls budget and risk classification.
type TiersConfig struct {
	BudgetMax       float64            `yaml:"budget_max"`
	StandardMax     float64            `yaml:"standard_max"`
	CurrencyWeights map[string]float64 `yaml:"currency_weights"`
	DefaultRisk     map[string]string  `yaml:"default_risk"` // dataset -> low/medium/high
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
// Plans are only persisted when Enabled is set.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Config with sensible defaults.
func Default() Config {
	pc := plan.DefaultConfig()

	risks := make(map[string]string, len(pc.Tiers.DefaultRisk))
	for ds, r := range pc.Tiers.DefaultRisk {
		risks[string(ds)] = r.String()
	}

	return Config{
		LogLevel: "info",
		DataDir:  "data",
		Matching: MatchingConfig{
			MinConfidence:    pc.MinConfidence,
			MaxResults:       resolver.DefaultMaxResults,
			MaxAnnotations:   pc.MaxAnnotations,
			AlternativeDelta: pc.AlternativeDelta,
			MaxRoutes:        pc.MaxRoutes,
		},
		Tiers: TiersConfig{
			BudgetMax:   pc.Tiers.BudgetMax,
			StandardMax: pc.Tiers.StandardMax,
			CurrencyWeights: map[string]float64{
				"Chaos Orb":   1,
				"Exalted Orb": 15,
				"Divine Orb":  150,
			},
			DefaultRisk: risks,
		},
		Server: ServerConfig{
			BindAddress: "127.0.0.1",
			Port:        8080,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "craftplan",
			Password: "craftplan",
			DBName:   "craftplan",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and tier names.
func (c Config) Validate() error {
	m := c.Matching
	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		return fmt.Errorf("matching.min_confidence %v out of [0, 1]", m.MinConfidence)
	}
	if m.MaxResults <= 0 || m.MaxAnnotations <= 0 {
		return fmt.Errorf("matching.max_results and matching.max_annotations must be positive")
	}
	if m.AlternativeDelta < 0 || m.MaxRoutes < 0 {
		return fmt.Errorf("matching.alternative_delta and matching.max_routes must not be negative")
	}
	if c.Tiers.BudgetMax > c.Tiers.StandardMax {
		return fmt.Errorf("tiers.budget_max %v exceeds tiers.standard_max %v", c.Tiers.BudgetMax, c.Tiers.StandardMax)
	}
	if _, err := c.Tiers.defaultRisk(); err != nil {
		return err
	}
	if _, err := normalize.New(m.Aliases); err != nil {
		return fmt.Errorf("matching.aliases: %w", err)
	}
	return nil
}

func (t TiersConfig) defaultRisk() (map[data.Dataset]data.RiskTier, error) {
	out := plan.DefaultTierConfig().DefaultRisk
	for name, level := range t.DefaultRisk {
		ds, err := data.ParseDataset(name)
		if err != nil {
			return nil, fmt.Errorf("tiers.default_risk: %w", err)
		}
		r, err := data.ParseRisk(level)
		if err != nil {
			return nil, fmt.Errorf("tiers.default_risk.%s: %w", name, err)
		}
		if r != data.RiskUnset {
			out[ds] = r
		}
	}
	return out, nil
}

// Normalizer builds the normalizer with the configured extra aliases.
func (c Config) Normalizer() (*normalize.Normalizer, error) {
	n, err := normalize.New(c.Matching.Aliases)
	if err != nil {
		return nil, fmt.Errorf("matching.aliases: %w", err)
	}
	return n, nil
}

// ResolverOptions returns the resolver settings.
func (c Config) ResolverOptions() resolver.Options {
	return resolver.Options{MaxResults: c.Matching.MaxResults}
}

// Plan returns the plan builder settings.
func (c Config) Plan() (plan.Config, error) {
	risks, err := c.Tiers.defaultRisk()
	if err != nil {
		return plan.Config{}, err
	}
	return plan.Config{
		MinConfidence:    c.Matching.MinConfidence,
		MaxAnnotations:   c.Matching.MaxAnnotations,
		AlternativeDelta: c.Matching.AlternativeDelta,
		MaxRoutes:        c.Matching.MaxRoutes,
		Tiers: plan.TierConfig{
			BudgetMax:       c.Tiers.BudgetMax,
			StandardMax:     c.Tiers.StandardMax,
			CurrencyWeights: c.Tiers.CurrencyWeights,
			DefaultRisk:     risks,
		},
	}, nil
}
