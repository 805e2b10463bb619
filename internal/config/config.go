// Package config loads and saves the payoff TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/payoff/internal/model"
)

// Config holds all payoff configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	LoanA      LoanConfig       `toml:"loan_a"`
	LoanB      LoanConfig       `toml:"loan_b"`
	Budget     BudgetConfig     `toml:"budget"`
	Sweep      SweepConfig      `toml:"sweep"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LogLevel  string `toml:"log_level"`
	Workers   int    `toml:"workers"`    // 0 = GOMAXPROCS
	MaxMonths int    `toml:"max_months"` // simulation guard
	Top       int    `toml:"top"`        // rows in the ranking table
	NoHistory bool   `toml:"no_history,omitempty"`
}

// LoanConfig describes one loan. Rates are annual percentages.
type LoanConfig struct {
	Name          string  `toml:"name,omitempty"`
	Principal     float64 `toml:"principal"`
	AnnualRatePct float64 `toml:"annual_rate_pct"`
}

// Loan converts the configured loan to simulator input.
func (l LoanConfig) Loan() model.Loan {
	return model.NewLoan(l.Principal, l.AnnualRatePct)
}

// BudgetConfig holds the combined monthly payment.
type BudgetConfig struct {
	Total float64 `toml:"total"`
}

// SweepConfig holds the candidate range for payment A. An Upper of zero
// means "up to the budget".
type SweepConfig struct {
	Lower float64 `toml:"lower"`
	Upper float64 `toml:"upper"`
	Step  float64 `toml:"step"`
}

// Bounds returns the effective sweep range for the given budget.
func (s SweepConfig) Bounds(budget float64) (lower, upper, step float64) {
	upper = s.Upper
	if upper == 0 {
		upper = budget
	}
	step = s.Step
	if step == 0 {
		step = 1
	}
	return s.Lower, upper, step
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds `payoff serve` settings.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
	CacheTTLSec int    `toml:"cache_ttl_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel:  "info",
			MaxMonths: 10_000,
			Top:       10,
		},
		LoanA: LoanConfig{Name: "Loan A"},
		LoanB: LoanConfig{Name: "Loan B"},
		Sweep: SweepConfig{Step: 1},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8787",
			CacheTTLSec: 3600,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "payoff")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the directory holding the run history database.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "payoff")
}

// HistoryPath returns the full path to the run history database.
func HistoryPath() string {
	return filepath.Join(CacheDir(), "history.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetRedisAddr returns the Redis address from env var or config, in that order.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("PAYOFF_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Server.RedisAddr
}

// Validate reports a missing principal or a negative rate, naming the loan by
// its config key.
func (l LoanConfig) Validate(key string) error {
	var errs []error
	if l.Principal <= 0 {
		errs = append(errs, fmt.Errorf("%s.principal must be positive", key))
	}
	if l.AnnualRatePct < 0 {
		errs = append(errs, fmt.Errorf("%s.annual_rate_pct must not be negative", key))
	}
	return errors.Join(errs...)
}

// Validate checks the loan, budget and sweep settings a search needs.
func (c Config) Validate() error {
	errs := []error{c.LoanA.Validate("loan_a"), c.LoanB.Validate("loan_b")}
	if c.Budget.Total <= 0 {
		errs = append(errs, errors.New("budget.total must be positive"))
	}
	if c.Sweep.Step < 0 {
		errs = append(errs, errors.New("sweep.step must not be negative"))
	}
	if c.General.Workers < 0 {
		errs = append(errs, errors.New("general.workers must not be negative"))
	}
	return errors.Join(errs...)
}
