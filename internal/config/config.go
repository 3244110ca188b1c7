// Package config loads bot settings from an optional YAML file and the
// environment, and validates them before anything runs.
//
// Precedence, highest first:
//   - ADRGOV_* variables (ADRGOV_THREAD_MARKER for thread.marker)
//   - GitHub Actions variables (GITHUB_TOKEN, GITHUB_REPOSITORY, ...)
//   - the config file
//   - defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/adrgov/internal/bot"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/event"
	"github.com/roach88/adrgov/internal/github"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".adrgov.yaml"

// Config is the fully resolved configuration.
type Config struct {
	Keyword         string        `mapstructure:"keyword"`
	Database        string        `mapstructure:"database"`
	AppendSeparator string        `mapstructure:"append_separator"`
	Timeout         time.Duration `mapstructure:"timeout"`

	Thread    ThreadConfig    `mapstructure:"thread"`
	Detection DetectionConfig `mapstructure:"detection"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Event     EventConfig     `mapstructure:"event"`

	// File is the config file that was read, "" when none.
	File string `mapstructure:"-"`
}

// ThreadConfig names discussion threads.
type ThreadConfig struct {
	TitleFormat string `mapstructure:"title_format"` // fmt verbs: record id, issue title
	Marker      string `mapstructure:"marker"`       // fmt verb: record id
}

// DetectionConfig decides which new issues open a record.
type DetectionConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

// GitHubConfig locates the repository and credentials.
type GitHubConfig struct {
	Owner      string  `mapstructure:"owner"`
	Repo       string  `mapstructure:"repo"`
	Repository string  `mapstructure:"repository"` // "owner/repo", as in GITHUB_REPOSITORY
	Token      string  `mapstructure:"token"`
	APIURL     string  `mapstructure:"api_url"`
	RateLimit  float64 `mapstructure:"requests_per_second"` // 0 disables pacing
}

// EventConfig points at the event being handled.
type EventConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("keyword", command.DefaultKeyword)
	v.SetDefault("database", ".adr/adr.db")
	v.SetDefault("append_separator", engine.DefaultSeparator)
	v.SetDefault("timeout", 2*time.Minute)
	v.SetDefault("thread.title_format", bot.DefaultTitleFormat)
	v.SetDefault("thread.marker", bot.DefaultMarker)
	v.SetDefault("detection.keywords", event.DefaultKeywords)
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.repository", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.api_url", github.DefaultAPIEndpoint)
	v.SetDefault("github.requests_per_second", float64(github.RequestsPerSecond))
	v.SetDefault("event.name", "")
	v.SetDefault("event.path", "")
}

// actionsEnv maps keys onto the variables GitHub Actions provides.
var actionsEnv = map[string]string{
	"github.token":      "GITHUB_TOKEN",
	"github.repository": "GITHUB_REPOSITORY",
	"github.api_url":    "GITHUB_API_URL",
	"event.name":        "GITHUB_EVENT_NAME",
	"event.path":        "GITHUB_EVENT_PATH",
}

// Load resolves the configuration. path may be empty, in which case
// DefaultFile is read if it exists. A path that is given must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ADRGOV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range actionsEnv {
		prefixed := "ADRGOV_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", DefaultFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.splitRepository()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitRepository fills Owner and Repo from "owner/repo" when they are unset.
func (c *Config) splitRepository() {
	owner, repo, ok := strings.Cut(c.GitHub.Repository, "/")
	if !ok {
		return
	}
	if c.GitHub.Owner == "" {
		c.GitHub.Owner = owner
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = repo
	}
}

// RequireGitHub reports whether everything needed to talk to GitHub is set.
func (c *Config) RequireGitHub() error {
	var missing []string
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		missing = append(missing, "github.owner/github.repo (or GITHUB_REPOSITORY)")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "github.token (or GITHUB_TOKEN)")
	}
	if len(missing) > 0 {
		return &ValidationError{Problems: missing, prefix: "missing configuration"}
	}
	return nil
}
