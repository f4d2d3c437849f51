package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"outlook-email-extractor/internal/models"

	"gopkg.in/yaml.v2"
)

// Environment variables overriding file values, usually provided through a .env file
const (
	EnvDebug        = "EXTRACTOR_DEBUG"
	EnvHTTPAddr     = "EXTRACTOR_HTTP_ADDR"
	EnvIMAPLogin    = "EXTRACTOR_IMAP_LOGIN"
	EnvIMAPPassword = "EXTRACTOR_IMAP_PASSWORD"
)

// Load reads the configuration from the specified YAML file on top of the defaults and applies
// environment overrides. A missing file is not an error: defaults are used.
func Load(filepath string) (*models.Config, error) {
	config := models.DefaultConfig()

	configFile, err := os.ReadFile(filepath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(configFile, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath, err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnv(config *models.Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %q", EnvDebug, v)
		}
		config.Debug = debug
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPAddr)); v != "" {
		config.HTTP.Addr = v
	}
	if v := os.Getenv(EnvIMAPLogin); v != "" {
		config.Archive.Login = v
	}
	if v := os.Getenv(EnvIMAPPassword); v != "" {
		config.Archive.Password = v
	}
	return nil
}

// Validate checks the values that would otherwise make the extractor misbehave silently
func Validate(config *models.Config) error {
	m := config.Monitor
	if m.InitialDelay < 0 || m.MutationDelay < 0 || m.ClickDelay < 0 {
		return fmt.Errorf("monitor delays must not be negative")
	}

	e := config.Extractor
	if e.MinContentLength < 0 {
		return fmt.Errorf("minContentLength must not be negative")
	}
	if e.FallbackMaxLength <= 0 {
		return fmt.Errorf("fallbackMaxLength must be positive")
	}
	if len(e.SubjectSelectors) == 0 || len(e.ContentSelectors) == 0 {
		return fmt.Errorf("subject and content selectors are required")
	}

	d := config.Detector
	if d.MainSelector == "" || d.ContentSelector == "" || len(d.LocationPatterns) == 0 {
		return fmt.Errorf("detector needs mainSelector, contentSelector and locationPatterns")
	}

	if config.Export.CSVContentLimit <= 0 {
		return fmt.Errorf("csvContentLimit must be positive")
	}

	if a := config.Archive; a.Enabled && (a.Imap == "" || a.MailBox == "") {
		return fmt.Errorf("archive enabled but imap or mailbox missing")
	}

	return nil
}
