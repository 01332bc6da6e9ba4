// Package config loads and validates the flashdoc configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Project      ProjectConfig `yaml:"project"`
	InputDir     string        `yaml:"input_dir,omitempty"`
	OutputURL    string        `yaml:"output_url"`
	Sources      []Source      `yaml:"sources,omitempty"`
	ExternalLibs []ExternalLib `yaml:"external_libs,omitempty"`
	Ignore       *IgnoreConfig `yaml:"ignore,omitempty"`
	Workers      int           `yaml:"workers,omitempty"` // render worker pool size
}

// ProjectConfig identifies the documented project.
type ProjectConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	// Repository is the project's home URL, informational only.
	Repository string `yaml:"repository,omitempty"`
	// Tree is the source-browse base URL; header paths relative to the
	// input root are appended to it. Defaulted from git metadata when
	// empty and the input root is a checkout.
	Tree string `yaml:"tree,omitempty"`
}

// Source is one configured source root inside the input directory. Include
// paths are rendered relative to the owning source root.
type Source struct {
	Dir string `yaml:"dir"`
}

// ExternalLib allows entities from a known external library's system headers
// into the tree instead of skipping them outright.
type ExternalLib struct {
	// Pattern is matched as a substring against system-header file paths.
	Pattern    string `yaml:"pattern"`
	Repository string `yaml:"repository"`
	// ExistsOnline gates whether browse links for this library are live.
	ExistsOnline bool `yaml:"exists_online"`
}

// IgnoreConfig holds the two independent ignore-pattern lists. Either list
// matching causes an entity to be dropped from the tree.
type IgnoreConfig struct {
	// Qualified patterns are matched against fully-qualified names.
	Qualified []string `yaml:"qualified,omitempty"`
	// Names patterns are matched against simple names.
	Names []string `yaml:"names,omitempty"`

	qualifiedRe []*regexp.Regexp
	namesRe     []*regexp.Regexp
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env if present; its absence is not an error.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.InputDir == "" {
		c.InputDir = "."
	}
	if len(c.Sources) == 0 {
		c.Sources = []Source{{Dir: "include"}}
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	// Browse URLs are produced by plain string concatenation onto the tree
	// base, so it must end with a separator.
	if c.Project.Tree != "" && !strings.HasSuffix(c.Project.Tree, "/") {
		c.Project.Tree += "/"
	}
}

// Validate compiles ignore patterns and checks required fields.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("config: project.name is required")
	}
	if c.OutputURL == "" {
		return fmt.Errorf("config: output_url is required")
	}
	for i, lib := range c.ExternalLibs {
		if lib.Pattern == "" {
			return fmt.Errorf("config: external_libs[%d].pattern is empty", i)
		}
	}
	if c.Ignore != nil {
		if err := c.Ignore.compile(); err != nil {
			return err
		}
	}
	return nil
}

func (ig *IgnoreConfig) compile() error {
	ig.qualifiedRe = ig.qualifiedRe[:0]
	for _, pat := range ig.Qualified {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("config: invalid qualified ignore pattern %q: %w", pat, err)
		}
		ig.qualifiedRe = append(ig.qualifiedRe, re)
	}
	ig.namesRe = ig.namesRe[:0]
	for _, pat := range ig.Names {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("config: invalid name ignore pattern %q: %w", pat, err)
		}
		ig.namesRe = append(ig.namesRe, re)
	}
	return nil
}

// MatchQualified reports whether any qualified-name pattern matches fqn.
func (ig *IgnoreConfig) MatchQualified(fqn string) bool {
	for _, re := range ig.qualifiedRe {
		if re.MatchString(fqn) {
			return true
		}
	}
	return false
}

// MatchName reports whether any simple-name pattern matches name.
func (ig *IgnoreConfig) MatchName(name string) bool {
	for _, re := range ig.namesRe {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// ExternalLibFor returns the first configured external library whose pattern
// occurs in the given header path, or nil if none match.
func (c *Config) ExternalLibFor(headerPath string) *ExternalLib {
	if headerPath == "" {
		return nil
	}
	for i := range c.ExternalLibs {
		if strings.Contains(headerPath, c.ExternalLibs[i].Pattern) {
			return &c.ExternalLibs[i]
		}
	}
	return nil
}

// SourceFor returns the configured source root containing the given header
// path (relative to the input root), or nil if none does.
func (c *Config) SourceFor(headerPath string) *Source {
	for i := range c.Sources {
		dir := strings.TrimSuffix(c.Sources[i].Dir, "/")
		if headerPath == dir || strings.HasPrefix(headerPath, dir+"/") {
			return &c.Sources[i]
		}
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Project: ProjectConfig{
			Name:       "MyProject",
			Version:    "1.0.0",
			Repository: "https://github.com/example/myproject",
			Tree:       "https://github.com/example/myproject/tree/main/",
		},
		OutputURL: "https://example.com/docs",
		Sources: []Source{
			{Dir: "include/myproject"},
		},
		ExternalLibs: []ExternalLib{
			{
				Pattern:      "fmt",
				Repository:   "https://github.com/fmtlib/fmt",
				ExistsOnline: true,
			},
		},
		Ignore: &IgnoreConfig{
			Qualified: []string{"::detail::"},
			Names:     []string{"^_"},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
