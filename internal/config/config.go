package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/neurobridge-milestones/internal/platform/badges"
	"github.com/yungbote/neurobridge-milestones/internal/platform/sendgrid"
)

const (
	BackendDB       = "db"
	BackendTemporal = "temporal"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Otel     OtelConfig     `mapstructure:"otel"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Awards   AwardsConfig   `mapstructure:"awards"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Env     string `mapstructure:"env" validate:"required"`
	Version string `mapstructure:"version"`
	LogMode string `mapstructure:"log_mode" validate:"oneof=development production"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host            string        `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port            int           `mapstructure:"port" validate:"required_if=Driver postgres,gte=0,lte=65535"`
	Name            string        `mapstructure:"name" validate:"required"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	SQLitePath      string        `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Channel  string `mapstructure:"channel"`
}

func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type JobsConfig struct {
	Backend           string        `mapstructure:"backend" validate:"oneof=db temporal"`
	Concurrency       int           `mapstructure:"concurrency" validate:"gte=1"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0"`
	BackoffBase       time.Duration `mapstructure:"backoff_base" validate:"gt=0"`
	BackoffMax        time.Duration `mapstructure:"backoff_max" validate:"gtefield=BackoffBase"`
	PollInterval      time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	StaleRunning      time.Duration `mapstructure:"stale_running" validate:"gt=0"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	Retention         time.Duration `mapstructure:"retention" validate:"gt=0"`
	RequeueSpec       string        `mapstructure:"requeue_spec" validate:"required"`
	PurgeSpec         string        `mapstructure:"purge_spec" validate:"required"`
	QueueDepthSpec    string        `mapstructure:"queue_depth_spec" validate:"required"`
}

// MaxAttempts is the first run plus MaxRetries.
func (j JobsConfig) MaxAttempts() int { return j.MaxRetries + 1 }

type TemporalConfig struct {
	Address                string        `mapstructure:"address"`
	Namespace              string        `mapstructure:"namespace"`
	TaskQueue              string        `mapstructure:"task_queue"`
	ClientCertPath         string        `mapstructure:"client_cert_path" validate:"omitempty,file"`
	ClientKeyPath          string        `mapstructure:"client_key_path" validate:"omitempty,file"`
	ClientCAPath           string        `mapstructure:"client_ca_path" validate:"omitempty,file"`
	DialTimeout            time.Duration `mapstructure:"dial_timeout"`
	DialMaxWait            time.Duration `mapstructure:"dial_max_wait"`
	AutoRegisterNamespace  bool          `mapstructure:"auto_register_namespace"`
	NamespaceRetentionDays int           `mapstructure:"namespace_retention_days" validate:"gte=0"`
	WorkerConcurrency      int           `mapstructure:"worker_concurrency" validate:"gte=0"`
}

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Headers     string  `mapstructure:"headers"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	ScrapeInterval time.Duration `mapstructure:"scrape_interval"`
}

type AwardsConfig struct {
	SendGrid sendgrid.Config `mapstructure:"sendgrid"`
	Badges   badges.Config   `mapstructure:"badges"`
}

type Loader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

// NewLoader reads configFile when given, otherwise config.yaml from the
// working directory or /etc/milestones. A missing file is not an error.
func NewLoader(configFile string) (*Loader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/milestones")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{viper: v, validator: validate, translator: trans}, nil
}

// LoadDotEnv loads the given .env files into the process environment,
// skipping files that do not exist. Existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (l *Loader) Load() (*Config, error) {
	v := l.viper
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := l.validator.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, e.Translate(l.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
	}
	if cfg.Jobs.Backend == BackendTemporal && strings.TrimSpace(cfg.Temporal.Address) == "" {
		return nil, fmt.Errorf("invalid configuration: temporal.address is required when jobs.backend is temporal")
	}
	return &cfg, nil
}

// Viper exposes the underlying instance so CLI flags can be bound to keys.
func (l *Loader) Viper() *viper.Viper { return l.viper }

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "milestones")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_mode", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "milestones")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "milestones.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.slow_threshold", time.Second)
	v.SetDefault("database.write_timeout", 15*time.Second)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "milestones.events")

	v.SetDefault("jobs.backend", BackendDB)
	v.SetDefault("jobs.concurrency", 4)
	v.SetDefault("jobs.max_retries", 3)
	v.SetDefault("jobs.backoff_base", 2*time.Second)
	v.SetDefault("jobs.backoff_max", 5*time.Minute)
	v.SetDefault("jobs.poll_interval", time.Second)
	v.SetDefault("jobs.stale_running", 5*time.Minute)
	v.SetDefault("jobs.heartbeat_interval", 0)
	v.SetDefault("jobs.retention", 7*24*time.Hour)
	v.SetDefault("jobs.requeue_spec", "*/1 * * * *")
	v.SetDefault("jobs.purge_spec", "0 3 * * *")
	v.SetDefault("jobs.queue_depth_spec", "@every 15s")

	v.SetDefault("temporal.address", "")
	v.SetDefault("temporal.namespace", "milestones")
	v.SetDefault("temporal.task_queue", "milestones")
	v.SetDefault("temporal.client_cert_path", "")
	v.SetDefault("temporal.client_key_path", "")
	v.SetDefault("temporal.client_ca_path", "")
	v.SetDefault("temporal.dial_timeout", 5*time.Second)
	v.SetDefault("temporal.dial_max_wait", time.Minute)
	v.SetDefault("temporal.auto_register_namespace", false)
	v.SetDefault("temporal.namespace_retention_days", 7)
	v.SetDefault("temporal.worker_concurrency", 4)

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.headers", "")
	v.SetDefault("otel.insecure", false)
	v.SetDefault("otel.sample_ratio", 0.1)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.scrape_interval", 10*time.Second)

	v.SetDefault("awards.sendgrid.api_key", "")
	v.SetDefault("awards.sendgrid.base_url", "")
	v.SetDefault("awards.sendgrid.from_email", "")
	v.SetDefault("awards.sendgrid.from_name", "")
	v.SetDefault("awards.sendgrid.timeout", 30*time.Second)
	v.SetDefault("awards.badges.base_url", "")
	v.SetDefault("awards.badges.api_token", "")
	v.SetDefault("awards.badges.timeout", 15*time.Second)
	v.SetDefault("awards.badges.retry_count", 2)
}
