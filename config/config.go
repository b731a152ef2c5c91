/*
Package config holds the configuration of an inspector server.

Configuration is read from a YAML file. Missing files and missing keys
fall back to defaults:

	whitespace:
	  skip_text: true
	dom:
	  initial_depth: 2
	css:
	  indent: "    "
	tracing:
	  level:
	    webinspect.session: info
	server:
	  listen: "localhost:9222"
	  transport: websocket

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"
)

// Transports of a server.
const (
	TransportStdio     = "stdio"
	TransportWebsocket = "websocket"
)

// ErrInvalid is returned for configurations which cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the configuration of an inspector server.
type Config struct {
	Whitespace WhitespaceConfig `yaml:"whitespace"`
	DOM        DOMConfig        `yaml:"dom"`
	CSS        CSSConfig        `yaml:"css"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Server     ServerConfig     `yaml:"server"`
}

// WhitespaceConfig sets the policy for whitespace-only text nodes.
type WhitespaceConfig struct {
	SkipText bool `yaml:"skip_text"` // hide whitespace-only text from the front end
}

type DOMConfig struct {
	InitialDepth int `yaml:"initial_depth"`
}

type CSSConfig struct {
	Indent string `yaml:"indent"` // indentation of properties written into empty rules
}

// TracingConfig maps tracer keys to trace levels ("error", "info", "debug").
type TracingConfig struct {
	Level map[string]string `yaml:"level"`
}

type ServerConfig struct {
	Listen    string `yaml:"listen"`
	Transport string `yaml:"transport"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Whitespace: WhitespaceConfig{SkipText: true},
		DOM:        DOMConfig{InitialDepth: 2},
		CSS:        CSSConfig{Indent: "    "},
		Tracing:    TracingConfig{Level: map[string]string{}},
		Server:     ServerConfig{Listen: "localhost:9222", Transport: TransportStdio},
	}
}

// Load reads a configuration file. If the file does not exist, the
// default configuration is returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a configuration for values out of range.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportWebsocket:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Server.Transport)
	}
	if c.DOM.InitialDepth < 1 {
		return fmt.Errorf("%w: initial depth must be positive", ErrInvalid)
	}
	if strings.TrimLeft(c.CSS.Indent, " \t") != "" {
		return fmt.Errorf("%w: indent %q is not whitespace", ErrInvalid, c.CSS.Indent)
	}
	for key, level := range c.Tracing.Level {
		if _, err := ParseLevel(level); err != nil {
			return fmt.Errorf("%w: tracer %s: %v", ErrInvalid, key, err)
		}
	}
	return nil
}

// ParseLevel reads a trace level.
func ParseLevel(s string) (tracing.TraceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return tracing.LevelError, nil
	case "info":
		return tracing.LevelInfo, nil
	case "debug":
		return tracing.LevelDebug, nil
	}
	return tracing.LevelError, fmt.Errorf("unknown trace level %q", s)
}

// ApplyTracing sets the trace levels of all configured tracers.
func (c *Config) ApplyTracing() {
	for key, level := range c.Tracing.Level {
		if l, err := ParseLevel(level); err == nil {
			tracing.Select(key).SetTraceLevel(l)
		}
	}
}
