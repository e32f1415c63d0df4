package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "expopanel/internal/shared/config"
)

type Config struct {
	API       sharedConfig.APIConfig       `mapstructure:"api"`
	Endpoints sharedConfig.EndpointsConfig `mapstructure:"endpoints"`
	Session   sharedConfig.SessionConfig   `mapstructure:"session"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Table     sharedConfig.TableConfig     `mapstructure:"table"`
	Login     sharedConfig.LoginConfig     `mapstructure:"login"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configuration from an optional config file and EXPOPANEL_*
// environment variables. An explicit file path must exist; the default
// search locations may be empty, in which case defaults apply.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "expopanel"))
		}
	}

	v.SetEnvPrefix("EXPOPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "http://localhost:8080/")
	v.SetDefault("api.timeout_seconds", 30)

	// Endpoint defaults
	v.SetDefault("endpoints.exhibitors.list", "expositores/TODOS_PANEL/")
	v.SetDefault("endpoints.exhibitors.mutation", "expositores/")
	v.SetDefault("endpoints.exhibitors.image_base", "https://envaseetifapp.com.ar/Imagenes/expositores/")
	v.SetDefault("endpoints.exhibitor_users.list", "expositores_usuarios/TODOS_PANEL/")
	v.SetDefault("endpoints.exhibitor_users.mutation", "expositores_usuarios/")
	v.SetDefault("endpoints.exhibitor_users.options", "expositores_usuarios/EXPOSITORES_LIST/")
	v.SetDefault("endpoints.agenda.list", "eventos/TODOS_PANEL/")
	v.SetDefault("endpoints.agenda.mutation", "eventos/")
	v.SetDefault("endpoints.banners.list", "banners/TODOS_PANEL/")
	v.SetDefault("endpoints.banners.mutation", "banners/")
	v.SetDefault("endpoints.banners.image_base", "https://envaseetifapp.com.ar/Imagenes/banners/")
	v.SetDefault("endpoints.visitor_requests.list", "visitantes_expositores/TODOS_PANEL/")
	v.SetDefault("endpoints.visitor_requests.base", "visitantes_expositores/")
	v.SetDefault("endpoints.auth", "users/")

	// Session defaults
	v.SetDefault("session.storage", "file")
	v.SetDefault("session.file_path", defaultStatePath("session.json"))
	v.SetDefault("session.sqlite_path", defaultStatePath("session.db"))
	v.SetDefault("session.require_expiry", false)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "expopanel:session:")

	// Logger defaults
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.source_all", false)

	// Table defaults (terminal metrics: one line per row)
	v.SetDefault("table.mode", "hover")
	v.SetDefault("table.row_height", 1)
	v.SetDefault("table.chrome_height", 8)
	v.SetDefault("table.min_rows", 5)

	// Login defaults
	v.SetDefault("login.resend_cooldown_seconds", 30)
}

func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".expopanel", name)
	}
	return filepath.Join(dir, "expopanel", name)
}
