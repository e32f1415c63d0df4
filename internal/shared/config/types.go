package config

import (
	"fmt"
	"time"
)

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (a *APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// EntityEndpoints holds the list and mutation paths of one entity.
// ImageBase and Options are only meaningful for some entities.
type EntityEndpoints struct {
	List      string `mapstructure:"list"`
	Mutation  string `mapstructure:"mutation"`
	ImageBase string `mapstructure:"image_base"`
	Options   string `mapstructure:"options"`
}

type VisitorRequestEndpoints struct {
	List string `mapstructure:"list"`
	Base string `mapstructure:"base"`
}

type EndpointsConfig struct {
	Exhibitors      EntityEndpoints         `mapstructure:"exhibitors"`
	ExhibitorUsers  EntityEndpoints         `mapstructure:"exhibitor_users"`
	Agenda          EntityEndpoints         `mapstructure:"agenda"`
	Banners         EntityEndpoints         `mapstructure:"banners"`
	VisitorRequests VisitorRequestEndpoints `mapstructure:"visitor_requests"`
	Auth            string                  `mapstructure:"auth"`
}

type SessionConfig struct {
	Storage       string `mapstructure:"storage"`
	FilePath      string `mapstructure:"file_path"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RequireExpiry bool   `mapstructure:"require_expiry"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	// SourceAll shows source location on every level instead of warn/error only.
	SourceAll bool `mapstructure:"source_all"`
}

type TableConfig struct {
	Mode         string `mapstructure:"mode"`
	RowHeight    int    `mapstructure:"row_height"`
	ChromeHeight int    `mapstructure:"chrome_height"`
	MinRows      int    `mapstructure:"min_rows"`
}

type LoginConfig struct {
	ResendCooldownSeconds int `mapstructure:"resend_cooldown_seconds"`
}

func (l *LoginConfig) ResendCooldown() time.Duration {
	if l.ResendCooldownSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.ResendCooldownSeconds) * time.Second
}
