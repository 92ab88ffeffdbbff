package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	AdminAddress string `mapstructure:"admin_address"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// VerificationConfig holds the tuning knobs of the slip matching engine.
// The defaults mirror the values the product launched with; they are
// configurable rather than compiled in because nobody has derived them
// from anything firmer than operator experience.
type VerificationConfig struct {
	ApproveThreshold float64 `mapstructure:"approve_threshold"`
	LookbackHours    int     `mapstructure:"lookback_hours"`
	ProximityHours   int     `mapstructure:"proximity_hours"`
	QueueWorkers     int     `mapstructure:"queue_workers"`
	QueueSize        int     `mapstructure:"queue_size"`
	SweepInterval    int     `mapstructure:"sweep_interval_minutes"`
	SweepCooloff     int     `mapstructure:"sweep_cooloff_minutes"`
	SweepMaxAttempts int     `mapstructure:"sweep_max_attempts"`
	DedupWindowHours int     `mapstructure:"dedup_window_hours"`
}

func (v *VerificationConfig) Lookback() time.Duration {
	return time.Duration(v.LookbackHours) * time.Hour
}

func (v *VerificationConfig) Proximity() time.Duration {
	return time.Duration(v.ProximityHours) * time.Hour
}

func (v *VerificationConfig) DedupWindow() time.Duration {
	return time.Duration(v.DedupWindowHours) * time.Hour
}
