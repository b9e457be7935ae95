// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-vault CLI.
// Subcommands score history entries, scan exported browser history,
// format citations, manage stored candidates, extract PDF metadata and
// serve the HTTP API. See DESIGN.md for the component map.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/secrets"
	"github.com/pdiddy/research-vault/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the effective configuration, loaded before every subcommand.
var cfg = types.DefaultConfig()

// logger is built from cfg.Logging once configuration is loaded.
var logger = zerolog.Nop()

// rootCmd is the base command for the research-vault CLI.
var rootCmd = &cobra.Command{
	Use:   "research-vault",
	Short: "Score browsing history for research relevance and format citations",
	Long: `research-vault classifies browsing-history entries as research-relevant
and generates bibliographic citations in APA, MLA, Chicago, Harvard and
IEEE styles.

Configuration is read from flags, RESEARCH_VAULT_* environment variables and
research-vault.yaml (current directory or ~/.config/research-vault/). API
keys are loaded from the .secrets/ directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		logger = observability.NewLogger(cfg.Logging)

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		if cfg.PDFMeta.APIKey == "" {
			cfg.PDFMeta.APIKey = secrets.Lookup(s, secrets.GeminiAPIKey, secrets.GeminiAPIKeyEnv)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-vault.yaml or ~/.config/research-vault/research-vault.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory holding API key files")
	pf.String("data-dir", "", "directory holding vault.db and exports")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("locale", "", "wording for reasons and placeholders: en or ja")

	_ = viper.BindPFlag("store.data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("scorer.locale", pf.Lookup("locale"))
	_ = viper.BindPFlag("citation.locale", pf.Lookup("locale"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-vault")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-vault"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers flags, environment and file values over
// types.DefaultConfig.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v, types.DefaultConfig())
	v.SetEnvPrefix("RESEARCH_VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	c.Citation.DefaultStyle = types.CitationStyle(strings.ToUpper(string(c.Citation.DefaultStyle)))
	return c, nil
}

// setDefaults registers every configuration key so environment variables
// are honored by Unmarshal.
func setDefaults(v *viper.Viper, d types.Config) {
	w := d.Scorer.Weights
	defaults := map[string]any{
		"scorer.tables_path":                   d.Scorer.TablesPath,
		"scorer.locale":                        d.Scorer.Locale,
		"scorer.weights.base":                  w.Base,
		"scorer.weights.academic_domain_bonus": w.AcademicDomainBonus,
		"scorer.weights.visit_step":            w.VisitStep,
		"scorer.weights.visit_cap":             w.VisitCap,
		"scorer.weights.title_keyword_bonus":   w.TitleKeywordBonus,
		"scorer.weights.url_keyword_bonus":     w.URLKeywordBonus,
		"scorer.weights.academic_threshold":    w.AcademicThreshold,
		"scorer.weights.frequent_visits":       w.FrequentVisits,
		"scan.limit":                           d.Scan.Limit,
		"scan.min_confidence":                  d.Scan.MinConfidence,
		"scan.workers":                         d.Scan.Workers,
		"citation.default_style":               string(d.Citation.DefaultStyle),
		"citation.locale":                      d.Citation.Locale,
		"store.data_dir":                       d.Store.DataDir,
		"pdfmeta.timeout":                      d.PDFMeta.Timeout,
		"pdfmeta.user_agent":                   d.PDFMeta.UserAgent,
		"pdfmeta.model":                        d.PDFMeta.Model,
		"pdfmeta.api_key":                      d.PDFMeta.APIKey,
		"pdfmeta.max_retries":                  d.PDFMeta.MaxRetries,
		"pdfmeta.endpoint":                     d.PDFMeta.Endpoint,
		"pdfmeta.rate_limit":                   d.PDFMeta.RateLimit,
		"server.address":                       d.Server.Address,
		"server.read_timeout":                  d.Server.ReadTimeout,
		"server.write_timeout":                 d.Server.WriteTimeout,
		"server.shutdown_timeout":              d.Server.ShutdownTimeout,
		"server.max_body_bytes":                d.Server.MaxBodyBytes,
		"logging.level":                        d.Logging.Level,
		"logging.format":                       d.Logging.Format,
		"logging.output":                       d.Logging.Output,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
