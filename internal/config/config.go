// Package config reads OCall settings from OCALL_* environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "OCALL"

type Config struct {
	ListenAddr     string
	DBType         string
	DBURI          string
	DBMaxOpenConns int
	TLS            bool
	TLSCert        string
	TLSKey         string
	CacheTTL       time.Duration
}

// New reads configFile, if given, and binds the environment. A missing
// explicit file is an error.
func New(configFile string) (*SettingsType, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	s := newSettings(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return s, nil
}

func Load(configFile string) (Config, error) {
	s, err := New(configFile)
	if err != nil {
		return Config{}, err
	}
	return s.Config()
}

// Config converts the raw settings and rejects values the server cannot use.
func (s *SettingsType) Config() (Config, error) {
	c := Config{
		ListenAddr: strings.TrimSpace(s.Get(LISTEN_ADDR)),
		DBType:     strings.ToLower(strings.TrimSpace(s.Get(DB_TYPE))),
		DBURI:      s.Get(DB_URI),
		TLSCert:    s.Get(TLS_CERT),
		TLSKey:     s.Get(TLS_KEY),
	}

	switch c.DBType {
	case "sqlite", "postgres":
	default:
		return c, fmt.Errorf("%s: unsupported database type %q", DB_TYPE, c.DBType)
	}
	if c.ListenAddr == "" {
		return c, fmt.Errorf("%s must not be empty", LISTEN_ADDR)
	}

	var err error
	if c.DBMaxOpenConns, err = strconv.Atoi(s.Get(DB_MAX_OPEN_CONNS)); err != nil || c.DBMaxOpenConns < 1 {
		return c, fmt.Errorf("%s: expected a positive integer, got %q", DB_MAX_OPEN_CONNS, s.Get(DB_MAX_OPEN_CONNS))
	}
	if c.TLS, err = strconv.ParseBool(s.Get(TLS)); err != nil {
		return c, fmt.Errorf("%s: %w", TLS, err)
	}
	if c.CacheTTL, err = time.ParseDuration(s.Get(CACHE_TTL)); err != nil {
		return c, fmt.Errorf("%s: %w", CACHE_TTL, err)
	}
	if c.CacheTTL <= 0 {
		return c, fmt.Errorf("%s must be positive", CACHE_TTL)
	}
	return c, nil
}
