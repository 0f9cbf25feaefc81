// Package config loads pipeline configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Dict      DictConfig      `yaml:"dict" mapstructure:"dict"`
	Xref      XrefConfig      `yaml:"xref" mapstructure:"xref"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PathsConfig names the datasets and artifacts the stages exchange.
type PathsConfig struct {
	AcquirorRegistry string `yaml:"acquiror_registry" mapstructure:"acquiror_registry"`
	PatentDB         string `yaml:"patent_db" mapstructure:"patent_db"`
	CompustatDB      string `yaml:"compustat_db" mapstructure:"compustat_db"`
	ReviewFile       string `yaml:"review_file" mapstructure:"review_file"`
	AutoFile         string `yaml:"auto_file" mapstructure:"auto_file"`
	DictionaryDB     string `yaml:"dictionary_db" mapstructure:"dictionary_db"`
	DictionaryView   string `yaml:"dictionary_view" mapstructure:"dictionary_view"`
	ConflictReport   string `yaml:"conflict_report" mapstructure:"conflict_report"`
	StatsReport      string `yaml:"stats_report" mapstructure:"stats_report"`
	OutcomeFile      string `yaml:"outcome_file" mapstructure:"outcome_file"`
	VerificationFile string `yaml:"verification_file" mapstructure:"verification_file"`
}

// MatchConfig holds the tier policy tunables.
type MatchConfig struct {
	Tier1Fraction     float64 `yaml:"tier1_fraction" mapstructure:"tier1_fraction"`
	Tier2MinPatents   int     `yaml:"tier2_min_patents" mapstructure:"tier2_min_patents"`
	Tier1Threshold    float64 `yaml:"tier1_threshold" mapstructure:"tier1_threshold"`
	Tier2Threshold    float64 `yaml:"tier2_threshold" mapstructure:"tier2_threshold"`
	MaxWorkers        int     `yaml:"max_workers" mapstructure:"max_workers"`
	ParallelThreshold int     `yaml:"parallel_threshold" mapstructure:"parallel_threshold"`
}

// NormalizeConfig configures the name normalizer. RulesFile optionally
// points at a YAML file extending the built-in abbreviation and
// legal-suffix tables.
type NormalizeConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// DictConfig configures the dictionary build stage. Sources is the
// caller-supplied priority order: the first source to map an assignee wins.
type DictConfig struct {
	Sources []string `yaml:"sources" mapstructure:"sources"`
}

// XrefConfig configures the Compustat cross-reference stage.
type XrefConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PATENTLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("match.tier1_fraction", 0.05)
	v.SetDefault("match.tier2_min_patents", 5)
	v.SetDefault("match.tier1_threshold", 90)
	v.SetDefault("match.tier2_threshold", 100)
	v.SetDefault("match.max_workers", 4)
	v.SetDefault("match.parallel_threshold", 100)
	v.SetDefault("xref.fuzzy_threshold", 90)
	v.SetDefault("paths.acquiror_registry", "final_outcome.xlsx")
	v.SetDefault("paths.patent_db", "patent_database.csv")
	v.SetDefault("paths.compustat_db", "compustat.csv")
	v.SetDefault("paths.review_file", "Step1_Manual_Review.xlsx")
	v.SetDefault("paths.auto_file", "Step1_Auto_Results.xlsx")
	v.SetDefault("paths.dictionary_db", "master_dictionary.db")
	v.SetDefault("paths.dictionary_view", "Master_Company_Dictionary_VIEW.xlsx")
	v.SetDefault("paths.conflict_report", "Dictionary_Conflicts.xlsx")
	v.SetDefault("paths.stats_report", "Dictionary_Build_Statistics.xlsx")
	v.SetDefault("paths.outcome_file", "final_outcome_COMPLETE.xlsx")
	v.SetDefault("paths.verification_file", "company_match_verification.xlsx")
	v.SetDefault("dict.sources", []string{"Step1_Manual_Review.xlsx", "Step1_Auto_Results.xlsx"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
