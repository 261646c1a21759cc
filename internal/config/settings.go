package config

import (
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
)

type SettingsType struct {
	v *viper.Viper
	m map[string]SettingType
}

type SettingType struct {
	Description string
	Default     string
}

func newSettings(v *viper.Viper) *SettingsType {
	s := &SettingsType{v: v, m: make(map[string]SettingType)}

	s.Set(LISTEN_ADDR, "Server listen address", ":8080")
	s.Set(DB_TYPE, "Database type, sqlite or postgres", "sqlite")
	s.Set(DB_URI, "Database connection string", "file:ocall.db?_pragma=foreign_keys(1)")
	s.Set(DB_MAX_OPEN_CONNS, "Maximum open database connections", "25")
	s.Set(TLS, "Serve HTTPS", "false")
	s.Set(TLS_CERT, "TLS certificate path, generated when missing", "certs/server.crt")
	s.Set(TLS_KEY, "TLS private key path, generated when missing", "certs/server.key")
	s.Set(CACHE_TTL, "Service read cache TTL", "5m")

	return s
}

func (s *SettingsType) Get(id string) string {
	return s.v.GetString(id)
}

func (s *SettingsType) Has(id string) bool {
	return len(s.Get(id)) > 0
}

func (s *SettingsType) IsTrue(id string) bool {
	return s.Get(id) == "true"
}

func (s *SettingsType) Set(id string, description string, defaultValue string) {
	s.v.SetDefault(id, defaultValue)
	s.m[id] = SettingType{Description: description, Default: defaultValue}
}

// Print writes the effective settings as a table.
func (s *SettingsType) Print(w io.Writer) {
	keys := make([]string, 0, len(s.m))
	for key := range s.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("KEY", "Description", "value")
	for _, key := range keys {
		table.Append([]string{envPrefix + "_" + key, s.m[key].Description, s.Get(key)})
	}
	table.Render()
}

const (
	LISTEN_ADDR       = "LISTEN_ADDR"
	DB_TYPE           = "DB_TYPE"
	DB_URI            = "DB_URI"
	DB_MAX_OPEN_CONNS = "DB_MAX_OPEN_CONNS"
	TLS               = "TLS"
	TLS_CERT          = "TLS_CERT"
	TLS_KEY           = "TLS_KEY"
	CACHE_TTL         = "CACHE_TTL"
)
