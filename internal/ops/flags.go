package ops

import (
	"flag"
	"io"
	"strconv"

	"github.com/yanun0323/errors"
)

// Parse resolves the configuration from command-line arguments.
// Values come from Default, then the -config file, then explicit flags.
// The first positional argument, when present, is the data file.
func Parse(name string, args []string) (Config, error) {
	scratch := Default()
	probe := flag.NewFlagSet(name, flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	path := bindFlags(probe, &scratch, "")
	if err := probe.Parse(args); err != nil && err != flag.ErrHelp {
		return Config{}, errors.Wrap(err, "parse flags")
	}

	cfg := Default()
	if *path != "" {
		loaded, err := Load(*path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	bindFlags(fs, &cfg, *path)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return Config{}, err
		}
		return Config{}, errors.Wrap(err, "parse flags")
	}
	if fs.NArg() > 0 {
		cfg.Data = fs.Arg(0)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config, configPath string) *string {
	path := fs.String("config", configPath, "Path to JSON or YAML config")
	fs.StringVar(&cfg.Network, "network", cfg.Network, "Listen network: tcp|unix")
	fs.StringVar(&cfg.Address, "addr", cfg.Address, "Listen address (host:port or socket path)")
	fs.StringVar(&cfg.Instrument, "instrument", cfg.Instrument, "Target instrument to calculate volatility for")
	fs.IntVar(&cfg.Warmup, "warmup", cfg.Warmup, "Rows replayed before the first prediction")
	fs.IntVar(&cfg.Horizon, "horizon", cfg.Horizon, "Forward window size in target rows")
	fs.IntVar(&cfg.Depth, "depth", cfg.Depth, "Order book levels per side")
	fs.DurationVar(&cfg.ResponseTimeout, "timeout", cfg.ResponseTimeout, "Per-prediction response timeout")
	fs.DurationVar(&cfg.LoginTimeout, "login-timeout", cfg.LoginTimeout, "Login timeout (0 uses -timeout)")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for session logs (empty disables)")
	fs.Var(negatedBool{target: &cfg.Progress}, "no-progress", "Disable progress bar in console")
	fs.StringVar(&cfg.StatusAddress, "status-addr", cfg.StatusAddress, "HTTP status listen address (empty disables)")
	fs.StringVar(&cfg.Storage.SQLitePath, "sqlite", cfg.Storage.SQLitePath, "SQLite file for session records")
	fs.StringVar(&cfg.Storage.Postgres.DSN, "pg-dsn", cfg.Storage.Postgres.DSN, "PostgreSQL DSN for session records")
	fs.StringVar(&cfg.Profiling.Address, "pyroscope", cfg.Profiling.Address, "Pyroscope server address")
	return path
}

// negatedBool is a boolean flag that stores the inverse of its value.
type negatedBool struct {
	target *bool
}

func (n negatedBool) String() string {
	if n.target == nil {
		return "false"
	}
	return strconv.FormatBool(!*n.target)
}

func (n negatedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*n.target = !v
	return nil
}

func (n negatedBool) IsBoolFlag() bool { return true }
