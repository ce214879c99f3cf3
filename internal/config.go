package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuannm99/novapool/internal/bufferpool"
	"github.com/tuannm99/novapool/internal/storage"
)

const envPrefix = "NOVAPOOL"

type NovaPoolConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Mode     string `mapstructure:"mode"`
		Workdir  string `mapstructure:"workdir"`
		Base     string `mapstructure:"base"`
		MaxPages int    `mapstructure:"max_pages"`
	} `mapstructure:"storage"`

	BufferPool struct {
		Frames int    `mapstructure:"frames"`
		Index  string `mapstructure:"index"`
	} `mapstructure:"bufferpool"`

	Log struct {
		Level       string `mapstructure:"level"`
		InfoLogPath string `mapstructure:"info_log_path"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novapool")
	v.SetDefault("storage.mode", storage.File.String())
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("storage.base", "novapool")
	v.SetDefault("storage.max_pages", storage.DefaultMaxPages)
	v.SetDefault("bufferpool.frames", bufferpool.DefaultCapacity)
	v.SetDefault("bufferpool.index", bufferpool.IndexMap.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.info_log_path", "")
}

// LoadConfig reads the YAML file at path on top of the defaults.
func LoadConfig(path string) (*NovaPoolConfig, error) {
	return Load(path, nil)
}

// Load resolves the configuration from, in decreasing priority: flags that were
// set, NOVAPOOL_* environment variables, the YAML file (if path != ""), defaults.
// Flags are bound by their viper key, e.g. "bufferpool.frames".
func Load(path string, flags *pflag.FlagSet) (*NovaPoolConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaPoolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file, env or flag is given.
func DefaultConfig() *NovaPoolConfig {
	cfg, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *NovaPoolConfig) Validate() error {
	if _, err := storage.GetStorageMode(c.Storage.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := bufferpool.ParseIndexKind(c.BufferPool.Index); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.BufferPool.Frames <= 0 {
		return fmt.Errorf("config: bufferpool.frames must be positive, got %d", c.BufferPool.Frames)
	}
	if c.Storage.MaxPages < 0 {
		return fmt.Errorf("config: storage.max_pages must not be negative, got %d", c.Storage.MaxPages)
	}
	if c.Storage.Mode == storage.File.String() && c.Storage.Workdir == "" {
		return fmt.Errorf("config: storage.workdir is required in file mode")
	}
	return nil
}

// RegisterFlags declares the command-line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("storage.mode", storage.File.String(), "storage mode: file | memory")
	fs.String("storage.workdir", "./data", "directory holding the page files")
	fs.Int("storage.max_pages", storage.DefaultMaxPages, "upper bound on allocated pages")
	fs.Int("bufferpool.frames", bufferpool.DefaultCapacity, "number of frames in the pool")
	fs.String("bufferpool.index", bufferpool.IndexMap.String(), "page index: map | hash")
	fs.String("log.level", "info", "log level: debug | info | warn | error")
}
