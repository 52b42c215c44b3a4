// Package config loads landmarkstage settings from the environment.
//
// Every field is read from a LANDMARKSTAGE_ prefixed variable, for example
// LANDMARKSTAGE_ADDR or LANDMARKSTAGE_VIDEO_MODE. Values may also come from a
// .env file; variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/ayusman/landmarkstage/internal/app"
	"github.com/ayusman/landmarkstage/internal/logging"
	"github.com/ayusman/landmarkstage/internal/perception"
	"github.com/ayusman/landmarkstage/internal/video"
)

// Prefix is prepended to every variable name.
const Prefix = "LANDMARKSTAGE_"

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Config is the complete process configuration.
type Config struct {
	Addr       string `validate:"required,hostname_port"`
	DataDir    string `validate:"required"`
	StaticDir  string
	Source     string `validate:"oneof=websocket mediapipe mock replay"`
	ReplayID   string `validate:"required_if=Source replay"`
	ReplayLoop bool
	CameraID   int `validate:"gte=0"`
	ScriptPath string
	PythonPath string
	VideoMode  string `validate:"omitempty,oneof=off on on-flipped"`
	Locale     string `validate:"omitempty,bcp47_language_tag"`
	LogLevel   string `validate:"oneof=trace debug info warn error"`
	LogFormat  string `validate:"oneof=console json"`
	LogFile    string
	Tray       bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	dataDir := ".landmarkstage"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".landmarkstage")
	}
	return Config{
		Addr:      "127.0.0.1:8765",
		DataDir:   dataDir,
		Source:    app.SourceWebSocket,
		Locale:    "en",
		LogLevel:  "info",
		LogFormat: "console",
		Tray:      true,
	}
}

// Load reads envFile, then the environment, and validates the result. An
// empty envFile loads DefaultEnvFile if it exists; a named file must exist.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()
	if err := cfg.readEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readEnv() error {
	readString("ADDR", &c.Addr)
	readString("DATA_DIR", &c.DataDir)
	readString("STATIC_DIR", &c.StaticDir)
	readString("SOURCE", &c.Source)
	readString("REPLAY_ID", &c.ReplayID)
	readString("SCRIPT_PATH", &c.ScriptPath)
	readString("PYTHON_PATH", &c.PythonPath)
	readString("VIDEO_MODE", &c.VideoMode)
	readString("LOCALE", &c.Locale)
	readString("LOG_LEVEL", &c.LogLevel)
	readString("LOG_FORMAT", &c.LogFormat)
	readString("LOG_FILE", &c.LogFile)

	if err := readBool("REPLAY_LOOP", &c.ReplayLoop); err != nil {
		return err
	}
	if err := readBool("TRAY", &c.Tray); err != nil {
		return err
	}
	return readInt("CAMERA_ID", &c.CameraID)
}

func readString(name string, dst *string) {
	if v, ok := os.LookupEnv(Prefix + name); ok {
		*dst = v
	}
}

func readBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	*dst = b
	return nil
}

func readInt(name string, dst *int) error {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	*dst = n
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath is the SQLite database inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "landmarkstage.db")
}

// Logging returns the logger options.
func (c *Config) Logging() logging.Options {
	return logging.Options{
		Level:   c.LogLevel,
		File:    c.LogFile,
		Console: c.LogFormat == "console",
	}
}

// App returns the application options. The caller fills in the store.
func (c *Config) App() (app.Config, error) {
	var mode video.Mode
	if c.VideoMode != "" {
		m, err := video.ParseMode(c.VideoMode)
		if err != nil {
			return app.Config{}, err
		}
		mode = m
	}

	tag := language.English
	if c.Locale != "" {
		t, err := language.Parse(c.Locale)
		if err != nil {
			return app.Config{}, fmt.Errorf("parse locale: %w", err)
		}
		tag = t
	}

	mp := perception.DefaultMediaPipeConfig()
	mp.ScriptPath = c.ScriptPath
	mp.PythonPath = c.PythonPath

	return app.Config{
		Source:     c.Source,
		ReplayID:   c.ReplayID,
		ReplayLoop: c.ReplayLoop,
		CameraID:   c.CameraID,
		MediaPipe:  mp,
		VideoMode:  mode,
		Locale:     tag,
	}, nil
}
