package hcs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known defaults used when no topics file is configured.
const (
	DefaultOperatorAccount = "0.0.5483526"
	DefaultStatusTopic     = "0.0.demo"
)

// Topic names understood by the simulated consensus layer.
const (
	TopicAgentRegistry   = "agent-registry"
	TopicTaskNegotiation = "task-negotiation"
	TopicSettlement      = "settlement"
)

// TopicConfig models the structure of configs/topics.yaml.
type TopicConfig struct {
	OperatorAccount string            `yaml:"operator_account"`
	StatusTopic     string            `yaml:"status_topic"`
	Topics          map[string]string `yaml:"topics"`
}

// DefaultTopicConfig returns the built-in topic registry.
func DefaultTopicConfig() TopicConfig {
	return TopicConfig{
		OperatorAccount: DefaultOperatorAccount,
		StatusTopic:     DefaultStatusTopic,
		Topics: map[string]string{
			TopicAgentRegistry:   "0.0.5483527",
			TopicTaskNegotiation: "0.0.5483528",
			TopicSettlement:      "0.0.5483529",
		},
	}
}

// LoadTopicConfig parses the YAML file containing topic metadata. An empty
// path yields the built-in defaults; missing fields are filled from them.
func LoadTopicConfig(path string) (TopicConfig, error) {
	defaults := DefaultTopicConfig()
	if strings.TrimSpace(path) == "" {
		return defaults, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return TopicConfig{}, fmt.Errorf("read topics file: %w", err)
	}

	var cfg TopicConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return TopicConfig{}, fmt.Errorf("parse topics file: %w", err)
	}

	if cfg.OperatorAccount == "" {
		cfg.OperatorAccount = defaults.OperatorAccount
	}
	if cfg.StatusTopic == "" {
		cfg.StatusTopic = defaults.StatusTopic
	}
	if cfg.Topics == nil {
		cfg.Topics = map[string]string{}
	}
	for name, id := range defaults.Topics {
		if _, ok := cfg.Topics[name]; !ok {
			cfg.Topics[name] = id
		}
	}
	return cfg, nil
}

// TopicID resolves a topic name to its simulated identifier.
func (c TopicConfig) TopicID(name string) (string, bool) {
	id, ok := c.Topics[name]
	return id, ok
}

// TopicMap returns a copy of the name to identifier mapping.
func (c TopicConfig) TopicMap() map[string]string {
	clone := make(map[string]string, len(c.Topics))
	for name, id := range c.Topics {
		clone[name] = id
	}
	return clone
}
