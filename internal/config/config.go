// Package config loads subwatch settings from a YAML file.
//
// Environment variables referenced as $VAR or ${VAR} in the file are expanded before
// decoding, and a .env file in the working directory is loaded first when present.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/storage"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFile = "file"
	BackendGist = "gist"
)

// DefaultSaveDir is used when the file does not set save_dir
const DefaultSaveDir = "~/.local/share/subwatch"

// Catalog describes where category names come from. All configured sources are merged.
type Catalog struct {
	Categories []string `yaml:"categories"`
	HTMLFile   string   `yaml:"html_file"`
	HTMLURL    string   `yaml:"html_url"`
	Selector   string   `yaml:"selector"`
}

// Config holds all runtime settings
type Config struct {
	SaveDir     string `yaml:"save_dir"`
	StateFile   string `yaml:"state_file"`
	Storage     string `yaml:"storage"`
	GistID      string `yaml:"gist_id"`
	GithubToken string `yaml:"github_token"`
	// EncryptionKey seals gist-stored state; ignored for file storage
	EncryptionKey string   `yaml:"encryption_key"`
	BotUserID     string   `yaml:"bot_user_id"`
	LogLevel      string   `yaml:"log_level"`
	MetricsAddr   string   `yaml:"metrics_addr"`
	Glyphs        []string `yaml:"glyphs"`
	Catalog       Catalog  `yaml:"catalog"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		SaveDir:   DefaultSaveDir,
		StateFile: storage.StateFileName,
		Storage:   BackendFile,
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg after expanding environment variables
func Parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrap(err, "decoding YAML")
	}
	return nil
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	switch c.Storage {
	case BackendFile:
		if c.SaveDir == "" {
			return errors.New("save_dir is required for file storage")
		}
	case BackendGist:
		if c.GistID == "" || c.GithubToken == "" {
			return errors.New("gist_id and github_token are required for gist storage")
		}
	default:
		return errors.Errorf("unknown storage backend %q (must be %q or %q)", c.Storage, BackendFile, BackendGist)
	}

	if len(c.Catalog.Categories) == 0 && c.Catalog.HTMLFile == "" && c.Catalog.HTMLURL == "" {
		return errors.New("catalog needs categories, html_file, or html_url")
	}
	return nil
}

// ValidateServe additionally requires the settings only the bot needs. Without bot_user_id the
// bot's own seeding reactions would be taken as subscriptions.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.BotUserID) == "" {
		return errors.New("bot_user_id is required to serve")
	}
	return nil
}

// OpenStorage builds the configured persistence backend
func (c *Config) OpenStorage() (subscription.Storage, error) {
	if c.Storage == BackendGist {
		return storage.NewGistStoreWithEncryption(c.GistID, c.GithubToken, c.EncryptionKey)
	}
	return storage.NewWithFile(c.SaveDir, c.StateFile)
}

// LoadCatalog merges the configured category sources into a catalog
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	names := append([]string(nil), c.Catalog.Categories...)

	if c.Catalog.HTMLFile != "" {
		f, err := os.Open(c.Catalog.HTMLFile)
		if err != nil {
			return nil, errors.Wrap(err, "opening catalog page")
		}
		defer f.Close()
		parsed, err := catalog.ParseHTML(f, c.Catalog.Selector)
		if err != nil {
			return nil, errors.Wrap(err, c.Catalog.HTMLFile)
		}
		names = append(names, parsed...)
	}

	if c.Catalog.HTMLURL != "" {
		fetched, err := catalog.NewFetcher().Fetch(c.Catalog.HTMLURL, c.Catalog.Selector)
		if err != nil {
			return nil, errors.Wrap(err, c.Catalog.HTMLURL)
		}
		names = append(names, fetched...)
	}

	return catalog.New(names...), nil
}
