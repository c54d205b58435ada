package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskdeck.db"
	DefaultLogName        = "taskdeck.log"

	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Complete      string `toml:"complete"`
	Delete        string `toml:"delete"`
	Detail        string `toml:"detail"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	Edit          string `toml:"edit"`
	Refresh       string `toml:"refresh"`
	Calendar      string `toml:"calendar"`
	AddSubtask    string `toml:"add_subtask"`
	ToggleSubtask string `toml:"toggle_subtask"`
	EditSubtask   string `toml:"edit_subtask"`
	DeleteSubtask string `toml:"delete_subtask"`
	PrevMonth     string `toml:"prev_month"`
	NextMonth     string `toml:"next_month"`
	PrevDay       string `toml:"prev_day"`
	NextDay       string `toml:"next_day"`
}

type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

type Config struct {
	Backend   string `toml:"backend"`
	DBPath    string `toml:"db_path"`
	Mongo     Mongo  `toml:"mongo"`
	User      string `toml:"user"`
	WeekStart string `toml:"week_start"`
	Log       Log    `toml:"log"`
	Keys      Keymap `toml:"keys"`
}

// ResolveConfigPath returns $TASKDECK_CONFIG when set, otherwise
// config.toml under the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv("TASKDECK_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "taskdeck", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist. Relative db and log paths are resolved
// against the config directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg.resolve(filepath.Dir(path)), nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("mongo backend needs mongo.uri and mongo.database")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.FirstWeekday(); err != nil {
		return err
	}
	return nil
}

func (c Config) resolve(dir string) Config {
	if !filepath.IsAbs(c.DBPath) && !strings.HasPrefix(c.DBPath, "file:") {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(dir, c.Log.Path)
	}
	return c
}

// FirstWeekday maps week_start to a weekday. Empty means Sunday.
func (c Config) FirstWeekday() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("unknown week_start %q", c.WeekStart)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}
	return Config{
		Backend:   BackendSQLite,
		DBPath:    DefaultDBName,
		User:      user,
		WeekStart: "sunday",
		Log: Log{
			Level: "info",
			Path:  DefaultLogName,
		},
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Complete:      "x",
			Delete:        "d",
			Detail:        "enter",
			Confirm:       "enter",
			Cancel:        "esc",
			Edit:          "e",
			Refresh:       "r",
			Calendar:      "c",
			AddSubtask:    "s",
			ToggleSubtask: " ",
			EditSubtask:   "E",
			DeleteSubtask: "D",
			PrevMonth:     "[",
			NextMonth:     "]",
			PrevDay:       "h",
			NextDay:       "l",
		},
	}
}
