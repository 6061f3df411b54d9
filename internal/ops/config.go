package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"volgrader/internal/replay"
	"volgrader/internal/session"
	"volgrader/pkg/conn"
	"volgrader/pkg/listener"
)

const (
	DefaultDataFile        = "data/training.csv"
	DefaultAddress         = "0.0.0.0:12345"
	DefaultInstrument      = "TEA"
	DefaultWarmup          = 1000
	DefaultHorizon         = 100
	DefaultDepth           = 10
	DefaultResponseTimeout = session.DefaultResponseTimeout
	DefaultStorageQueue    = 64
	DefaultPyroscopeApp    = "volgrader"
)

// FileConfig mirrors the JSON / YAML config layout. Durations use time.ParseDuration syntax.
type FileConfig struct {
	Data            string          `json:"data" yaml:"data"`
	Network         string          `json:"network" yaml:"network"`
	Address         string          `json:"address" yaml:"address"`
	Instrument      string          `json:"instrument" yaml:"instrument"`
	Warmup          *int            `json:"warmup" yaml:"warmup"`
	Horizon         int             `json:"horizon" yaml:"horizon"`
	Depth           int             `json:"depth" yaml:"depth"`
	ResponseTimeout string          `json:"responseTimeout" yaml:"responseTimeout"`
	LoginTimeout    string          `json:"loginTimeout" yaml:"loginTimeout"`
	LogDir          string          `json:"logDir" yaml:"logDir"`
	Progress        *bool           `json:"progress" yaml:"progress"`
	StatusAddress   string          `json:"statusAddress" yaml:"statusAddress"`
	Storage         StorageConfig   `json:"storage" yaml:"storage"`
	Profiling       ProfilingConfig `json:"profiling" yaml:"profiling"`
}

// StorageConfig enables the optional session-log sinks.
type StorageConfig struct {
	SQLitePath string         `json:"sqlitePath" yaml:"sqlitePath"`
	Postgres   PostgresConfig `json:"postgres" yaml:"postgres"`
	QueueSize  int            `json:"queueSize" yaml:"queueSize"`
}

// PostgresConfig is enabled when DSN or Host is set.
type PostgresConfig struct {
	DSN      string `json:"dsn" yaml:"dsn"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`
}

// ProfilingConfig enables pyroscope when Address is set.
type ProfilingConfig struct {
	Address string `json:"address" yaml:"address"`
	AppName string `json:"appName" yaml:"appName"`
}

// Config is the resolved, immutable grader configuration.
type Config struct {
	Data            string
	Network         string
	Address         string
	Instrument      string
	Warmup          int
	Horizon         int
	Depth           int
	ResponseTimeout time.Duration
	LoginTimeout    time.Duration
	LogDir          string
	Progress        bool
	StatusAddress   string
	Storage         StorageConfig
	Profiling       ProfilingConfig
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Data:            DefaultDataFile,
		Network:         listener.NetworkTCP,
		Address:         DefaultAddress,
		Instrument:      DefaultInstrument,
		Warmup:          DefaultWarmup,
		Horizon:         DefaultHorizon,
		Depth:           DefaultDepth,
		ResponseTimeout: DefaultResponseTimeout,
		Progress:        true,
		Storage:         StorageConfig{QueueSize: DefaultStorageQueue},
		Profiling:       ProfilingConfig{AppName: DefaultPyroscopeApp},
	}
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.Network == "" {
		c.Network = d.Network
	}
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Instrument == "" {
		c.Instrument = d.Instrument
	}
	if c.Horizon == 0 {
		c.Horizon = d.Horizon
	}
	if c.Depth == 0 {
		c.Depth = d.Depth
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = d.ResponseTimeout
	}
	if c.Storage.QueueSize == 0 {
		c.Storage.QueueSize = d.Storage.QueueSize
	}
	if c.Profiling.AppName == "" {
		c.Profiling.AppName = d.Profiling.AppName
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Data == "" {
		return fmt.Errorf("invalid config: data file is empty")
	}
	if c.Network != listener.NetworkTCP && c.Network != listener.NetworkUnix {
		return fmt.Errorf("invalid config: unsupported network %q", c.Network)
	}
	if c.Address == "" {
		return fmt.Errorf("invalid config: address is empty")
	}
	if c.Instrument == "" {
		return fmt.Errorf("invalid config: instrument is empty")
	}
	if c.Warmup < 0 {
		return fmt.Errorf("invalid config: warmup must be >= 0")
	}
	if c.Horizon < 2 {
		return fmt.Errorf("invalid config: horizon must be >= 2")
	}
	if c.Depth <= 0 {
		return fmt.Errorf("invalid config: depth must be > 0")
	}
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("invalid config: responseTimeout must be > 0")
	}
	if c.LoginTimeout < 0 {
		return fmt.Errorf("invalid config: loginTimeout must be >= 0")
	}
	if c.Storage.QueueSize < 0 {
		return fmt.Errorf("invalid config: storage queueSize must be >= 0")
	}
	return nil
}

// ReplaySource describes the recording and how it is graded.
func (c Config) ReplaySource() replay.Source {
	return replay.Source{
		Path:    c.Data,
		Target:  c.Instrument,
		Warmup:  c.Warmup,
		Horizon: c.Horizon,
		Depth:   c.Depth,
	}
}

// SessionConfig returns the per-connection settings.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		ResponseTimeout: c.ResponseTimeout,
		LoginTimeout:    c.LoginTimeout,
		LogDir:          c.LogDir,
	}
}

// PostgresEnabled reports whether a PostgreSQL sink is configured.
func (c Config) PostgresEnabled() bool {
	return c.Storage.Postgres.DSN != "" || c.Storage.Postgres.Host != ""
}

// PostgresOption converts the storage settings for pkg/conn.
func (c Config) PostgresOption() conn.Option {
	pg := c.Storage.Postgres
	return conn.Option{
		Host:       pg.Host,
		Port:       pg.Port,
		User:       pg.User,
		Password:   pg.Password,
		Database:   pg.Database,
		SSLMode:    pg.SSLMode,
		ConnString: pg.DSN,
	}
}

// Load reads a .json, .yaml or .yml config file on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	var file FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = sonic.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return Config{}, errors.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "decode config").With("path", path)
	}

	return file.resolve(Default())
}

func (f FileConfig) resolve(cfg Config) (Config, error) {
	if f.Data != "" {
		cfg.Data = f.Data
	}
	if f.Network != "" {
		cfg.Network = f.Network
	}
	if f.Address != "" {
		cfg.Address = f.Address
	}
	if f.Instrument != "" {
		cfg.Instrument = f.Instrument
	}
	if f.Warmup != nil {
		cfg.Warmup = *f.Warmup
	}
	if f.Horizon != 0 {
		cfg.Horizon = f.Horizon
	}
	if f.Depth != 0 {
		cfg.Depth = f.Depth
	}
	if f.ResponseTimeout != "" {
		d, err := time.ParseDuration(f.ResponseTimeout)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse responseTimeout")
		}
		cfg.ResponseTimeout = d
	}
	if f.LoginTimeout != "" {
		d, err := time.ParseDuration(f.LoginTimeout)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse loginTimeout")
		}
		cfg.LoginTimeout = d
	}
	if f.LogDir != "" {
		cfg.LogDir = f.LogDir
	}
	if f.Progress != nil {
		cfg.Progress = *f.Progress
	}
	if f.StatusAddress != "" {
		cfg.StatusAddress = f.StatusAddress
	}
	if f.Storage.QueueSize == 0 {
		f.Storage.QueueSize = cfg.Storage.QueueSize
	}
	cfg.Storage = f.Storage
	if f.Profiling.Address != "" {
		cfg.Profiling.Address = f.Profiling.Address
	}
	if f.Profiling.AppName != "" {
		cfg.Profiling.AppName = f.Profiling.AppName
	}
	return cfg, nil
}
