// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing harness configuration.
// Components depend on this rather than *Config so tests can hand in fixtures.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Target() TargetConfig
	Wait() WaitConfig
	Auth() AuthConfig
	Suite() SuiteConfig
	Fixtures() FixturesConfig
	Report() ReportConfig
	Diagnostics() DiagnosticsConfig

	SetBrowserHeadless(bool)
	SetTargetBaseURL(string)
	SetSuiteGroups([]string)
	SetReportFormat(string)
	SetReportOutput(string)
}

// Config holds the entire harness configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	TargetCfg      TargetConfig      `mapstructure:"target" yaml:"target"`
	WaitCfg        WaitConfig        `mapstructure:"wait" yaml:"wait"`
	AuthCfg        AuthConfig        `mapstructure:"auth" yaml:"auth"`
	SuiteCfg       SuiteConfig       `mapstructure:"suite" yaml:"suite"`
	FixturesCfg    FixturesConfig    `mapstructure:"fixtures" yaml:"fixtures"`
	ReportCfg      ReportConfig      `mapstructure:"report" yaml:"report"`
	DiagnosticsCfg DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
}

var _ Interface = (*Config)(nil)

// --- Getters ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Target() TargetConfig           { return c.TargetCfg }
func (c *Config) Wait() WaitConfig               { return c.WaitCfg }
func (c *Config) Auth() AuthConfig               { return c.AuthCfg }
func (c *Config) Suite() SuiteConfig             { return c.SuiteCfg }
func (c *Config) Fixtures() FixturesConfig       { return c.FixturesCfg }
func (c *Config) Report() ReportConfig           { return c.ReportCfg }
func (c *Config) Diagnostics() DiagnosticsConfig { return c.DiagnosticsCfg }

// --- Setters (CLI overrides) ---

func (c *Config) SetBrowserHeadless(b bool)      { c.BrowserCfg.Headless = b }
func (c *Config) SetTargetBaseURL(u string)      { c.TargetCfg.BaseURL = strings.TrimRight(u, "/") }
func (c *Config) SetSuiteGroups(groups []string) { c.SuiteCfg.Groups = groups }
func (c *Config) SetReportFormat(f string)       { c.ReportCfg.Format = f }
func (c *Config) SetReportOutput(p string)       { c.ReportCfg.Output = p }

type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls the single Chrome process shared by a run.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	DisableGPU      bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int `mapstructure:"viewport" yaml:"viewport"`
	LaunchTimeout   time.Duration  `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// TargetConfig locates the admin panel under test.
type TargetConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	Email         string `mapstructure:"email" yaml:"email"`
	Password      string `mapstructure:"password" yaml:"-"`
	WrongPassword string `mapstructure:"wrong_password" yaml:"-"`
}

// WaitConfig tunes the navigation waiter. A negative DefaultTimeout or
// Unbounded=true makes waits expire only with the scenario guard.
type WaitConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	DefaultTimeout    time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Unbounded         bool          `mapstructure:"unbounded" yaml:"unbounded"`
}

// AuthStrategy selects how authenticated state reaches each sequence.
type AuthStrategy string

const (
	AuthShared      AuthStrategy = "shared"
	AuthPerSequence AuthStrategy = "per_sequence"
)

type AuthConfig struct {
	Strategy AuthStrategy `mapstructure:"strategy" yaml:"strategy"`
}

type SuiteConfig struct {
	Groups          []string      `mapstructure:"groups" yaml:"groups"`
	ParallelGroups  bool          `mapstructure:"parallel_groups" yaml:"parallel_groups"`
	ScenarioTimeout time.Duration `mapstructure:"scenario_timeout" yaml:"scenario_timeout"`
	LoginTimeout    time.Duration `mapstructure:"login_timeout" yaml:"login_timeout"`
	NegativeLogin   bool          `mapstructure:"negative_login" yaml:"negative_login"`
}

type FixturesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

type DiagnosticsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// NewDefaultConfig builds a configuration from defaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "lispico-e2e")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.disable_gpu", true)
	// The panel is served from a local TLS host with a self-signed certificate.
	v.SetDefault("browser.ignore_tls_errors", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.launch_timeout", "60s")
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 800})

	// -- Target --
	v.SetDefault("target.base_url", "https://lispico.local.host")
	v.SetDefault("target.email", "root@fullspeed.co.jp")
	v.SetDefault("target.password", "fullspeed")
	v.SetDefault("target.wrong_password", "not-the-password")

	// -- Wait --
	v.SetDefault("wait.poll_interval", "100ms")
	v.SetDefault("wait.default_timeout", "30s")
	v.SetDefault("wait.navigation_timeout", "90s")
	v.SetDefault("wait.unbounded", false)

	// -- Auth --
	v.SetDefault("auth.strategy", string(AuthShared))

	// -- Suite --
	v.SetDefault("suite.groups", []string{"login", "admin_users", "members"})
	v.SetDefault("suite.parallel_groups", false)
	v.SetDefault("suite.scenario_timeout", "5m")
	v.SetDefault("suite.login_timeout", "60s")
	v.SetDefault("suite.negative_login", true)

	// -- Fixtures --
	v.SetDefault("fixtures.file", "")

	// -- Report --
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output", "stdout")

	// -- Diagnostics --
	v.SetDefault("diagnostics.enabled", true)
	v.SetDefault("diagnostics.dir", "./e2e-artifacts")
}

// NewConfigFromViper unmarshals, normalizes and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Credentials are usually injected through the environment.
	_ = v.BindEnv("target.password", "LISPICO_TARGET_PASSWORD")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// normalize expands home-relative paths and trims the base URL.
func (c *Config) normalize() error {
	c.TargetCfg.BaseURL = strings.TrimRight(c.TargetCfg.BaseURL, "/")

	paths := []*string{&c.LoggerCfg.LogFile, &c.FixturesCfg.File, &c.DiagnosticsCfg.Dir}
	if c.ReportCfg.Output != "stdout" {
		paths = append(paths, &c.ReportCfg.Output)
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.TargetCfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target.base_url must be an absolute URL, got %q", c.TargetCfg.BaseURL)
	}
	if c.TargetCfg.Email == "" {
		return fmt.Errorf("target.email is required")
	}
	if c.WaitCfg.PollInterval <= 0 {
		return fmt.Errorf("wait.poll_interval must be positive")
	}
	if c.WaitCfg.DefaultTimeout == 0 && !c.WaitCfg.Unbounded {
		return fmt.Errorf("wait.default_timeout must be non-zero (use wait.unbounded for no limit)")
	}
	switch c.AuthCfg.Strategy {
	case AuthShared, AuthPerSequence:
	default:
		return fmt.Errorf("auth.strategy must be %q or %q, got %q", AuthShared, AuthPerSequence, c.AuthCfg.Strategy)
	}
	if c.SuiteCfg.ScenarioTimeout <= 0 {
		return fmt.Errorf("suite.scenario_timeout must be positive")
	}
	if c.SuiteCfg.LoginTimeout <= 0 {
		return fmt.Errorf("suite.login_timeout must be positive")
	}
	switch c.ReportCfg.Format {
	case "text", "json", "junit":
	default:
		return fmt.Errorf("report.format must be one of text, json, junit, got %q", c.ReportCfg.Format)
	}
	return nil
}

// EffectiveWaitTimeout is the bound applied to a wait that does not set its own.
// A negative result means unbounded.
func (w WaitConfig) EffectiveWaitTimeout() time.Duration {
	if w.Unbounded {
		return -1
	}
	return w.DefaultTimeout
}
