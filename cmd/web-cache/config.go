package main

import (
	"fmt"
	"os"
	"regexp"
	"time"

	webcache "github.com/ericselin/web-cache"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Origin            string       `yaml:"origin"`
	MaxAge            string       `yaml:"maxAge"`
	Version           string       `yaml:"version"`
	IgnoreQuerystring bool         `yaml:"ignoreQuerystring"`
	ClientCache       bool         `yaml:"clientCache"`
	Rules             []ConfigRule `yaml:"rules"`
}

type ConfigRule struct {
	Match             string `yaml:"match"`
	MaxAge            string `yaml:"maxAge"`
	IgnoreQuerystring *bool  `yaml:"ignoreQuerystring"`
	ClientCache       *bool  `yaml:"clientCache"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

func (c Config) maxAge() (time.Duration, error) {
	return parseMaxAge(c.MaxAge)
}

func (c Config) rules() (webcache.Rules, error) {
	rules := make(webcache.Rules, 0, len(c.Rules))
	for _, cr := range c.Rules {
		match, err := regexp.Compile(cr.Match)
		if err != nil {
			return nil, fmt.Errorf("rule pattern %q: %w", cr.Match, err)
		}
		maxAge, err := parseMaxAge(cr.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", cr.Match, err)
		}
		rules = append(rules, webcache.Rule{
			Match:             match,
			MaxAge:            maxAge,
			IgnoreQuerystring: cr.IgnoreQuerystring,
			ClientCache:       cr.ClientCache,
		})
	}
	return rules, nil
}

// parseMaxAge reads a duration like "5m" or "1h30m".
// An empty string means "use the default" and parses to zero.
func parseMaxAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
