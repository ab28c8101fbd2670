package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"renoplanner/internal/logger"
)

// PhaseSpec is one timeline phase as declared in config.yaml.
type PhaseSpec struct {
	Name  string `yaml:"name"`
	Weeks int    `yaml:"weeks"`
}

// YAMLConfig represents the structure of config.yaml.
type YAMLConfig struct {
	Logging logger.Config `yaml:"logging"`

	Routing struct {
		EditKeywords string `yaml:"edit_keywords"`
		PlanKeywords string `yaml:"plan_keywords"`
	} `yaml:"routing"`

	Inference struct {
		Provider    string  `yaml:"provider"`
		ChatModel   string  `yaml:"chat_model"`
		ImageModel  string  `yaml:"image_model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"inference"`

	Conversation struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		MaxTurns   int `yaml:"max_turns"`
	} `yaml:"conversation"`

	Planner PlannerConfig `yaml:"planner"`
}

// PlannerConfig holds the cost and timeline tables for the design planner.
type PlannerConfig struct {
	ContingencyRate   float64                         `yaml:"contingency_rate"`
	DefaultScope      string                          `yaml:"default_scope"`
	Rates             map[string]map[string][]float64 `yaml:"rates"`
	DefaultSquareFeet map[string]int                  `yaml:"default_square_feet"`
	Phases            map[string][]PhaseSpec          `yaml:"phases"`
}

// Load loads configuration from a YAML file.
func Load(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config YAMLConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *YAMLConfig) error {
	if c.Inference.ChatModel == "" {
		return fmt.Errorf("inference.chat_model is required")
	}
	if c.Inference.ImageModel == "" {
		return fmt.Errorf("inference.image_model is required")
	}
	if len(c.Planner.Rates) == 0 {
		return fmt.Errorf("planner.rates must declare at least one room type")
	}
	for room, scopes := range c.Planner.Rates {
		for scope, bounds := range scopes {
			if len(bounds) != 2 || bounds[0] < 0 || bounds[1] < bounds[0] {
				return fmt.Errorf("planner.rates.%s.%s must be a [low, high] pair with 0 <= low <= high", room, scope)
			}
		}
	}
	for scope, phases := range c.Planner.Phases {
		for i, p := range phases {
			if p.Weeks <= 0 {
				return fmt.Errorf("planner.phases.%s[%d]: weeks must be positive", scope, i)
			}
		}
	}
	return nil
}

// KeywordList splits a comma-separated keyword string into trimmed,
// lowercased entries.
func KeywordList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
