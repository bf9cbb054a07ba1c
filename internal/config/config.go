// Package config loads the TOML settings file, writing defaults on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	EnvConfigPath         = "MYDAY_CONFIG"

	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Add        string `toml:"add"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	Toggle     string `toml:"toggle"`
	Important  string `toml:"important"`
	MyDay      string `toml:"my_day"`
	Delete     string `toml:"delete"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
	Rename     string `toml:"rename"`
	NextList   string `toml:"next_list"`
	PrevList   string `toml:"prev_list"`
	NewList    string `toml:"new_list"`
	DueForward string `toml:"due_forward"`
	DueBack    string `toml:"due_back"`
	Repeat     string `toml:"repeat"`
	DeleteList string `toml:"delete_list"`
	Theme      string `toml:"theme"`
}

type Reminder struct {
	Interval string `toml:"interval"`
	DedupCap int    `toml:"dedup_cap"`
}

type Save struct {
	PerSecond float64 `toml:"per_second"`
}

type Log struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Encoding string `toml:"encoding"`
	File     string `toml:"file"`
}

type Config struct {
	DBPath      string   `toml:"db_path"`
	Backend     string   `toml:"backend"`
	DataDir     string   `toml:"data_dir"`
	DefaultList string   `toml:"default_list"`
	Reminder    Reminder `toml:"reminder"`
	Save        Save     `toml:"save"`
	Log         Log      `toml:"log"`
	Keys        Keymap   `toml:"keys"`
}

// ReminderInterval parses the configured poll interval, falling back to
// 30s for empty or invalid values.
func (c Config) ReminderInterval() time.Duration {
	d, err := time.ParseDuration(c.Reminder.Interval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ResolveConfigPath returns $MYDAY_CONFIG when set, else config.toml in the
// user config directory.
func ResolveConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "myday", DefaultConfigFileName), nil
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Save.PerSecond < 0 {
		return errors.New("save.per_second must not be negative")
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.DefaultList == "" {
		c.DefaultList = def.DefaultList
	}
	if c.Reminder.DedupCap <= 0 {
		c.Reminder.DedupCap = def.Reminder.DedupCap
	}
	if c.Save.PerSecond == 0 {
		c.Save.PerSecond = def.Save.PerSecond
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		DBPath:      DefaultDBName,
		Backend:     BackendSQLite,
		DataDir:     "data",
		DefaultList: "my-day",
		Reminder:    Reminder{Interval: "30s", DedupCap: 100},
		Save:        Save{PerSecond: 2},
		Log:         Log{Level: "info", Mode: "production", Encoding: "json"},
		Keys: Keymap{
			Quit:       "q",
			Add:        "a",
			Up:         "k",
			Down:       "j",
			Toggle:     " ",
			Important:  "i",
			MyDay:      "m",
			Delete:     "d",
			Confirm:    "enter",
			Cancel:     "esc",
			Rename:     "r",
			NextList:   "tab",
			PrevList:   "shift+tab",
			NewList:    "n",
			DueForward: "]",
			DueBack:    "[",
			Repeat:     "R",
			DeleteList: "x",
			Theme:      "t",
		},
	}
}
