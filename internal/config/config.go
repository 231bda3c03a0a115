package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"ThemeSentinel/internal/calculator"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/strategy"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config.yaml"

// Config holds all application configuration.
type Config struct {
	Data struct {
		RankingDir      string `yaml:"ranking_dir" validate:"required"`
		RankingPrefix   string `yaml:"ranking_prefix" validate:"required"`
		MembershipPath  string `yaml:"membership_path"`
		GreenFilterPath string `yaml:"green_filter_path"`
		TstopFilterPath string `yaml:"tstop_filter_path"`
		FilterLookback  int    `yaml:"filter_lookback" validate:"gte=1"`
		PriceSource     string `yaml:"price_source" validate:"oneof=csv yahoo mock"`
		PriceDir        string `yaml:"price_dir" validate:"required_if=PriceSource csv"`
		ReportDir       string `yaml:"report_dir"`
	} `yaml:"data"`
	Tiers struct {
		Rules    []strategy.TierRule                 `yaml:"rules" validate:"max=3,dive"`
		Profiles map[model.Tier]strategy.TierProfile `yaml:"profiles"`
	} `yaml:"tiers"`
	Band struct {
		Window     int     `yaml:"window" validate:"gte=2"`
		Multiplier float64 `yaml:"multiplier" validate:"gt=0"`
		MinPrice   float64 `yaml:"min_price" validate:"gte=0"`
		MinDate    string  `yaml:"min_date"` // YYYY-MM-DD, empty disables
		Limit      int     `yaml:"limit" validate:"gte=0"`
		Workers    int     `yaml:"workers" validate:"gte=1,lte=64"`
	} `yaml:"band"`
	Trend struct {
		LookbackDays int `yaml:"lookback_days" validate:"gte=1"`
		TopN         int `yaml:"top_n" validate:"gte=1"`
	} `yaml:"trend"`
	Graph struct {
		network.Options `yaml:",inline"`
		SearchLimit     int `yaml:"search_limit" validate:"gte=1"`
	} `yaml:"graph"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron" validate:"required"`
		ScanCron    string `yaml:"scan_cron" validate:"required"`
		TrendCron   string `yaml:"trend_cron" validate:"required"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		Addr string `yaml:"addr" validate:"required"`
		Mode string `yaml:"mode" validate:"oneof=debug release test"`
	} `yaml:"api"`
	Proxy string `yaml:"proxy"`
}

// Path resolves the config file location from a flag value and CONFIG_PATH.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := map[string]*string{
		"RANKING_DIR":        &c.Data.RankingDir,
		"MEMBERSHIP_PATH":    &c.Data.MembershipPath,
		"GREEN_FILTER_PATH":  &c.Data.GreenFilterPath,
		"TSTOP_FILTER_PATH":  &c.Data.TstopFilterPath,
		"PRICE_SOURCE":       &c.Data.PriceSource,
		"PRICE_DIR":          &c.Data.PriceDir,
		"REPORT_DIR":         &c.Data.ReportDir,
		"BAND_MIN_DATE":      &c.Band.MinDate,
		"CRON_REFRESH":       &c.Schedule.RefreshCron,
		"CRON_SCAN":          &c.Schedule.ScanCron,
		"CRON_TREND":         &c.Schedule.TrendCron,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"API_ADDR":           &c.API.Addr,
		"GIN_MODE":           &c.API.Mode,
		"HTTPS_PROXY":        &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TREND_LOOKBACK_DAYS": &c.Trend.LookbackDays,
		"BAND_WORKERS":        &c.Band.Workers,
		"BAND_LIMIT":          &c.Band.Limit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Data.RankingDir == "" {
		c.Data.RankingDir = "data"
	}
	if c.Data.RankingPrefix == "" {
		c.Data.RankingPrefix = "combined_score_ranking"
	}
	if c.Data.MembershipPath == "" {
		c.Data.MembershipPath = "data/theme_ticker_master.csv"
	}
	if c.Data.FilterLookback == 0 {
		c.Data.FilterLookback = 5
	}
	if c.Data.PriceSource == "" {
		c.Data.PriceSource = "csv"
	}
	if c.Data.PriceDir == "" && c.Data.PriceSource == "csv" {
		c.Data.PriceDir = "data/prices"
	}
	if c.Data.ReportDir == "" {
		c.Data.ReportDir = "reports"
	}
	if len(c.Tiers.Rules) == 0 {
		c.Tiers.Rules = append([]strategy.TierRule(nil), strategy.DefaultTierRules...)
	}
	band := calculator.DefaultBandParams()
	if c.Band.Window == 0 {
		c.Band.Window = band.Window
	}
	if c.Band.Multiplier == 0 {
		c.Band.Multiplier = band.Multiplier
	}
	if c.Band.MinPrice == 0 {
		c.Band.MinPrice = band.MinPrice
	}
	if c.Band.Limit == 0 {
		c.Band.Limit = 30
	}
	if c.Band.Workers == 0 {
		c.Band.Workers = 8
	}
	if c.Trend.LookbackDays == 0 {
		c.Trend.LookbackDays = 7
	}
	if c.Trend.TopN == 0 {
		c.Trend.TopN = 5
	}
	graph := network.DefaultOptions()
	if c.Graph.TopK == 0 {
		c.Graph.TopK = graph.TopK
	}
	if c.Graph.FanOut == 0 {
		c.Graph.FanOut = graph.FanOut
	}
	if c.Graph.MinShared == 0 {
		c.Graph.MinShared = graph.MinShared
	}
	if c.Graph.SearchLimit == 0 {
		c.Graph.SearchLimit = 15
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */30 * * * *"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 0 1 * * *"
	}
	if c.Schedule.TrendCron == "" {
		c.Schedule.TrendCron = "0 0 9 * * 1"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.API.Mode == "" {
		c.API.Mode = "release"
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks struct constraints, cron expressions, the band freshness
// date and the tier table.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, spec := range map[string]string{
		"schedule.refresh_cron": c.Schedule.RefreshCron,
		"schedule.scan_cron":    c.Schedule.ScanCron,
		"schedule.trend_cron":   c.Schedule.TrendCron,
	} {
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := c.BandParams(); err != nil {
		return err
	}
	if _, err := c.TierClassifier(); err != nil {
		return err
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// BandParams converts the band section.
func (c *Config) BandParams() (calculator.BandParams, error) {
	p := calculator.BandParams{
		Window:     c.Band.Window,
		Multiplier: c.Band.Multiplier,
		MinPrice:   c.Band.MinPrice,
	}
	if c.Band.MinDate != "" {
		d, err := time.Parse("2006-01-02", c.Band.MinDate)
		if err != nil {
			return p, fmt.Errorf("band.min_date: %w", err)
		}
		p.MinDate = d
	}
	return p, nil
}

// TierClassifier builds the classifier from the tiers section.
func (c *Config) TierClassifier() (*strategy.TierClassifier, error) {
	tc, err := strategy.NewTierClassifier(c.Tiers.Rules, c.Tiers.Profiles)
	if err != nil {
		return nil, fmt.Errorf("tiers: %w", err)
	}
	return tc, nil
}

// Sources returns the dataset file locations.
func (c *Config) Sources() dataset.Sources {
	return dataset.Sources{
		RankingDir:      c.Data.RankingDir,
		RankingPrefix:   c.Data.RankingPrefix,
		MembershipPath:  c.Data.MembershipPath,
		GreenFilterPath: c.Data.GreenFilterPath,
		TstopFilterPath: c.Data.TstopFilterPath,
		FilterLookback:  c.Data.FilterLookback,
	}
}
