package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Adithya411/sac-databricks-widget/internal/adapter"
)

const (
	defaultListen         = ":4000"
	defaultRequestTimeout = 60 * time.Second
)

type Config struct {
	Listen         string         `yaml:"listen"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	Widgets        []WidgetConfig `yaml:"widgets"`
	index          map[string]int
}

type WidgetConfig struct {
	Name            string        `yaml:"name"`
	Title           string        `yaml:"title"`
	DialectName     string        `yaml:"dialect"`
	EndpointURL     string        `yaml:"endpoint_url"`
	DefaultQuestion string        `yaml:"default_question"`
	PendingStatus   string        `yaml:"pending_status"`
	Timeout         time.Duration `yaml:"timeout"`

	Dialect adapter.Dialect `yaml:"-"`
}

// Load reads a yaml config. A .env file next to it (or in the working
// directory) is loaded first so ${VARS} in the yaml can refer to it.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = defaultListen
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}

	for i := range c.Widgets {
		if strings.TrimSpace(c.Widgets[i].Title) == "" {
			c.Widgets[i].Title = strings.TrimSpace(c.Widgets[i].Name)
		}
		if c.Widgets[i].Timeout == 0 {
			c.Widgets[i].Timeout = c.RequestTimeout
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Widgets) == 0 {
		return fmt.Errorf("widgets is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}

	index := make(map[string]int, len(c.Widgets))
	for i, w := range c.Widgets {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return fmt.Errorf("widgets[%d].name is required", i)
		}
		if _, exists := index[name]; exists {
			return fmt.Errorf("duplicate widget name: %s", name)
		}

		d, err := adapter.ParseDialect(w.DialectName)
		if err != nil {
			return fmt.Errorf("widgets[%d].dialect: %w", i, err)
		}

		endpoint := strings.TrimSpace(w.EndpointURL)
		if endpoint != "" {
			u, err := url.Parse(endpoint)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("widgets[%d].endpoint_url is invalid: %s", i, w.EndpointURL)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("widgets[%d].endpoint_url must use http/https", i)
			}
		}
		if w.Timeout < 0 {
			return fmt.Errorf("widgets[%d].timeout must not be negative", i)
		}

		c.Widgets[i].Name = name
		c.Widgets[i].EndpointURL = endpoint
		c.Widgets[i].Dialect = d
		index[name] = i
	}

	c.index = index
	return nil
}

func (c *Config) WidgetByName(name string) (WidgetConfig, bool) {
	idx, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return WidgetConfig{}, false
	}
	return c.Widgets[idx], true
}

// WidgetNames returns names in config order.
func (c *Config) WidgetNames() []string {
	names := make([]string, 0, len(c.Widgets))
	for _, w := range c.Widgets {
		names = append(names, w.Name)
	}
	return names
}
