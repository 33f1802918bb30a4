package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/minefield"
)

type Duration struct{ time.Duration }

// [Duration] implements [json.Marshaler]
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DbName   string `json:"db_name"`
	SSLMode  string `json:"sslmode"`
}

func (p PostgresConfig) URL() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, url.QueryEscape(p.Password), p.Host, p.Port, p.DbName, sslMode,
	)
}

type TokenConfig struct {
	Secret   string   `json:"secret"`
	Lifetime Duration `json:"lifetime"`
}

// DefaultMaxCells caps custom grids unless the config says otherwise.
const DefaultMaxCells = 10_000

// GameDefaults apply to new games that name neither a preset nor a size.
// MaxCells bounds the grids players may ask for.
type GameDefaults struct {
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	Mines    int `json:"mines"`
	MaxCells int `json:"max_cells"`
}

type Config struct {
	Mode     string         `json:"mode"`
	Addr     string         `json:"addr"`
	LogFile  string         `json:"log_file"`
	Postgres PostgresConfig `json:"postgres"`
	Token    TokenConfig    `json:"token"`
	Defaults GameDefaults   `json:"defaults"`

	databaseURL string
}

func Default() *Config {
	return &Config{
		Mode: "production",
		Addr: ":8080",
		Postgres: PostgresConfig{
			Host: "localhost", Port: 5432, User: "postgres", DbName: "minefield",
		},
		Token:    TokenConfig{Lifetime: Duration{24 * time.Hour}},
		Defaults: GameDefaults{Rows: 10, Cols: 10, Mines: 10, MaxCells: DefaultMaxCells},
	}
}

// Read reads a JSON config over [Default] and applies the environment,
// without validating the result.
func Read(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load is [Read] followed by [Config.Validate].
func Load(path string) (*Config, error) {
	c, err := Read(path)
	if err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		c.databaseURL = v
	}
	if v, ok := os.LookupEnv("POSTGRES_PASSWORD"); ok {
		c.Postgres.Password = v
	} else if path, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read from password file: %w", err)
		}
		c.Postgres.Password = strings.TrimSpace(string(data))
	}
	if v, ok := os.LookupEnv("TOKEN_SECRET"); ok {
		c.Token.Secret = v
	}
	if v, ok := os.LookupEnv("DEVELOPMENT"); ok && v != "0" {
		c.Mode = "development"
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Token.Secret == "" {
		return errors.New("no token secret configured")
	}
	if c.Token.Lifetime.Duration <= 0 {
		return errors.New("token lifetime must be positive")
	}
	d := c.Defaults
	if d.MaxCells <= 0 {
		return fmt.Errorf("max_cells must be positive, got %d", d.MaxCells)
	}
	if d.Rows > d.MaxCells || d.Cols > d.MaxCells || d.Rows*d.Cols > d.MaxCells {
		return fmt.Errorf("default %dx%d grid exceeds max_cells %d", d.Rows, d.Cols, d.MaxCells)
	}
	if _, err := minefield.New(d.Rows, d.Cols, d.Mines); err != nil {
		return fmt.Errorf("invalid game defaults: %w", err)
	}
	return nil
}

// DatabaseURL prefers DATABASE_URL over the postgres section.
func (c *Config) DatabaseURL() string {
	if c.databaseURL != "" {
		return c.databaseURL
	}
	return c.Postgres.URL()
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"mode":          c.Mode,
		"addr":          c.Addr,
		"logFile":       c.LogFile,
		"pgHost":        c.Postgres.Host,
		"pgPort":        c.Postgres.Port,
		"pgUser":        c.Postgres.User,
		"pgDbName":      c.Postgres.DbName,
		"databaseUrl":   c.databaseURL != "",
		"tokenLifetime": c.Token.Lifetime.String(),
		"defaults":      c.Defaults,
	}
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}
