package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database      DatabaseConfigs    `toml:"database"`
	ApiServer     APIServerConfigs   `toml:"api_server"`
	Reservation   ReservationConfigs `toml:"reservation"`
	Selection     SelectionConfigs   `toml:"selection"`
	Redis         RedisConfigs       `toml:"redis"`
	Kafka         KafkaConfigs       `toml:"kafka"`
	Nats          NatsConfigs        `toml:"nats"`
	SnowflakeNode int64              `toml:"snowflake_node"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"` // mysql, postgres or sqlite
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// File is the database file when Driver is sqlite.
	File string `toml:"file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Password, d.Database)
	case "sqlite":
		return d.File
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true&clientFoundRows=true",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type APIServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

type ReservationConfigs struct {
	DefaultTTL    Duration `toml:"default_ttl"`
	MaxTTL        Duration `toml:"max_ttl"`
	SweepInterval Duration `toml:"sweep_interval"`
	MaxPageSize   int      `toml:"max_page_size"`

	// MaxRandomAttempts bounds the retries of a random assignment that keeps
	// losing races for the numbers it picked.
	MaxRandomAttempts int `toml:"max_random_attempts"`
}

type SelectionConfigs struct {
	AutoSelectInterval Duration `toml:"auto_select_interval"`
}

type RedisConfigs struct {
	Addr       string   `toml:"addr"`
	DrawingTTL Duration `toml:"drawing_ttl"`
}

type KafkaConfigs struct {
	Addr     string `toml:"addr"`
	ClientID string `toml:"client_id"`
}

type NatsConfigs struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// Duration is a time.Duration decoded from strings like "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the configurations used when a field is left empty in the
// configuration file.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver: "sqlite",
			File:   "slotdraw.db",
		},
		ApiServer: APIServerConfigs{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Reservation: ReservationConfigs{
			DefaultTTL:        Duration{15 * time.Minute},
			MaxTTL:            Duration{time.Hour},
			SweepInterval:     Duration{time.Minute},
			MaxPageSize:       1000,
			MaxRandomAttempts: 5,
		},
		Selection: SelectionConfigs{
			AutoSelectInterval: Duration{time.Minute},
		},
		Redis: RedisConfigs{
			DrawingTTL: Duration{10 * time.Minute},
		},
		Kafka: KafkaConfigs{
			ClientID: "slotdraw",
		},
		Nats: NatsConfigs{
			SubjectPrefix: "slotdraw.events",
		},
		SnowflakeNode: 1,
	}
}

// Load reads the TOML file at path on top of the defaults. A .env file in the
// working directory is loaded first so the file may reference ${VARIABLES}.
func Load(path string) (Configs, error) {
	cfg := Default()

	// .env is optional.
	_ = godotenv.Load()

	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file: %w", err)
	}

	if _, err := toml.Decode(os.ExpandEnv(string(content)), &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file: %w", err)
	}

	return cfg, nil
}
