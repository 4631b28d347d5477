package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/hnrobert/ltspacct/internal/auth"
	"github.com/hnrobert/ltspacct/internal/hostfs"
	"github.com/hnrobert/ltspacct/internal/record"
)

// EnvPrefix is the prefix of the environment overrides, e.g. LTSPACCT_HOST_ROOT.
const EnvPrefix = "ltspacct"

// DefaultGroups are the supplementary groups every imported account joins:
// admin, hardware access and multimedia groups of a classroom Pi network.
var DefaultGroups = []string{"adm", "dialout", "cdrom", "audio", "users", "video", "games", "plugdev", "input", "pupil"}

type Config struct {
	HostRoot     string `yaml:"host_root" envconfig:"host_root"`
	EtcDir       string `yaml:"etc_dir" envconfig:"etc_dir"`
	MigrationDir string `yaml:"migration_dir" envconfig:"migration_dir"`

	Schemas []string `yaml:"schemas" envconfig:"schemas"`
	Groups  []string `yaml:"groups" envconfig:"groups"`
	Shell   string   `yaml:"shell" envconfig:"shell"`
	Hash    string   `yaml:"hash" envconfig:"hash"`

	Dialog         string        `yaml:"dialog" envconfig:"dialog"`
	CommandTimeout time.Duration `yaml:"command_timeout" envconfig:"command_timeout"`

	LogLevel string `yaml:"log_level" envconfig:"log_level"`
	LogDir   string `yaml:"log_dir" envconfig:"log_dir"`
}

// Default returns the configuration of a stock LTSP server.
func Default() Config {
	return Config{
		HostRoot:       "/",
		EtcDir:         "/etc",
		MigrationDir:   "/root/move",
		Schemas:        schemaNames(record.Schemas),
		Groups:         append([]string(nil), DefaultGroups...),
		Shell:          "/bin/bash",
		Hash:           auth.SchemeSHA512,
		Dialog:         "whiptail",
		CommandTimeout: 30 * time.Second,
		LogLevel:       "info",
	}
}

func DefaultPath() string {
	return filepath.Join("/etc", "ltspacct.yaml")
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fill() {
	d := Default()
	if c.HostRoot == "" {
		c.HostRoot = d.HostRoot
	}
	if c.EtcDir == "" {
		c.EtcDir = d.EtcDir
	}
	if c.MigrationDir == "" {
		c.MigrationDir = d.MigrationDir
	}
	if len(c.Schemas) == 0 {
		c.Schemas = d.Schemas
	}
	if c.Shell == "" {
		c.Shell = d.Shell
	}
	if c.Hash == "" {
		c.Hash = d.Hash
	}
	if c.Dialog == "" {
		c.Dialog = d.Dialog
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = d.CommandTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func (c Config) Validate() error {
	if _, err := c.SchemaList(); err != nil {
		return err
	}
	if _, err := auth.NewHasher(c.Hash); err != nil {
		return err
	}
	if !filepath.IsAbs(c.Shell) {
		return fmt.Errorf("invalid shell %q: must be an absolute path", c.Shell)
	}
	return nil
}

// SchemaList resolves the configured schema names.
func (c Config) SchemaList() ([]record.Schema, error) {
	out := make([]record.Schema, 0, len(c.Schemas))
	for _, name := range c.Schemas {
		s, ok := record.LookupSchema(name)
		if !ok {
			return nil, fmt.Errorf("unknown schema %q (want passwd, group, shadow or gshadow)", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func (c Config) Root() hostfs.Root {
	return hostfs.Root(c.HostRoot)
}

// LivePath is the account file for a schema, e.g. /etc/shadow.
func (c Config) LivePath(s record.Schema) (string, error) {
	return c.Root().Path(filepath.Join(c.EtcDir, s.Name))
}

// MigratedPath is the staged export for a schema, e.g. /root/move/shadow.mig.
func (c Config) MigratedPath(s record.Schema) (string, error) {
	return c.Root().Path(filepath.Join(c.MigrationDir, s.Name+".mig"))
}

func schemaNames(schemas []record.Schema) []string {
	out := make([]string, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Name)
	}
	return out
}
