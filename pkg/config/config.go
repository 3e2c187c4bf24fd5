package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/ezra"
	ConfigFileName    = "ezra.yml"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Attribute sources
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// EzraConfig holds all server configuration settings
type EzraConfig struct {
	// BindAddress is the interface the HTTP server listens on
	BindAddress string `json:"bind_address" validate:"required,ip|hostname"`

	// Port is the HTTP listen port
	Port int `json:"port" validate:"min=1,max=65535"`

	// StorageDriver selects the record store implementation
	StorageDriver string `json:"storage_driver" validate:"oneof=file postgres"`

	// DataDir holds one JSON file per collection when using the file driver
	DataDir string `json:"data_dir" validate:"required_if=StorageDriver file"`

	// BackupDir holds the seed files used by `ezractl data reset`
	BackupDir string `json:"backup_dir"`

	// DatabaseURL is the PostgreSQL connection string for the postgres driver
	DatabaseURL string `json:"database_url" validate:"required_if=StorageDriver postgres"`

	LogLevel  string `json:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `json:"log_format" validate:"oneof=json console"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	// An empty list allows any origin.
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`

	// JWTSecret is the HS256 key for bearer tokens. Empty disables auth.
	JWTSecret string `json:"-"`

	// AuditEnabled turns on RFC5424 audit records for mutations
	AuditEnabled bool `json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors ezra.yml. Pointers distinguish "absent" from zero values.
type fileConfig struct {
	BindAddress        *string  `yaml:"bind_address"`
	Port               *int     `yaml:"port"`
	StorageDriver      *string  `yaml:"storage_driver"`
	DataDir            *string  `yaml:"data_dir"`
	BackupDir          *string  `yaml:"backup_dir"`
	DatabaseURL        *string  `yaml:"database_url"`
	LogLevel           *string  `yaml:"log_level"`
	LogFormat          *string  `yaml:"log_format"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	JWTSecret          *string  `yaml:"jwt_secret"`
	AuditEnabled       *bool    `yaml:"audit_enabled"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *EzraConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *EzraConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *EzraConfig {
	return &EzraConfig{
		BindAddress:        "0.0.0.0",
		Port:               3001,
		StorageDriver:      DriverFile,
		DataDir:            "data",
		BackupDir:          "backup",
		LogLevel:           "info",
		LogFormat:          "json",
		CORSAllowedOrigins: []string{},
		AuditEnabled:       true,
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*EzraConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = SourceDefault
	}

	configPath := os.Getenv("EZRA_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"bind_address", "port", "storage_driver", "data_dir", "backup_dir",
		"database_url", "log_level", "log_format", "cors_allowed_origins",
		"jwt_secret", "audit_enabled",
	}
}

func (c *EzraConfig) applyFileConfig(file *fileConfig) {
	setFromFile(c, "bind_address", &c.BindAddress, file.BindAddress)
	setFromFile(c, "port", &c.Port, file.Port)
	setFromFile(c, "storage_driver", &c.StorageDriver, file.StorageDriver)
	setFromFile(c, "data_dir", &c.DataDir, file.DataDir)
	setFromFile(c, "backup_dir", &c.BackupDir, file.BackupDir)
	setFromFile(c, "database_url", &c.DatabaseURL, file.DatabaseURL)
	setFromFile(c, "log_level", &c.LogLevel, file.LogLevel)
	setFromFile(c, "log_format", &c.LogFormat, file.LogFormat)
	setFromFile(c, "jwt_secret", &c.JWTSecret, file.JWTSecret)
	setFromFile(c, "audit_enabled", &c.AuditEnabled, file.AuditEnabled)
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = SourceFile
	}
}

func setFromFile[V any](c *EzraConfig, name string, dst *V, src *V) {
	if src == nil {
		return
	}
	*dst = *src
	c.sources[name] = SourceFile
}

func (c *EzraConfig) applyEnvConfig() error {
	strs := []struct {
		env  string
		name string
		dst  *string
	}{
		{"BIND_ADDRESS", "bind_address", &c.BindAddress},
		{"EZRA_STORAGE_DRIVER", "storage_driver", &c.StorageDriver},
		{"EZRA_DATA_DIR", "data_dir", &c.DataDir},
		{"EZRA_BACKUP_DIR", "backup_dir", &c.BackupDir},
		{"DATABASE_URL", "database_url", &c.DatabaseURL},
		{"EZRA_LOG_LEVEL", "log_level", &c.LogLevel},
		{"EZRA_LOG_FORMAT", "log_format", &c.LogFormat},
		{"EZRA_JWT_SECRET", "jwt_secret", &c.JWTSecret},
	}
	for _, s := range strs {
		if val := os.Getenv(s.env); val != "" {
			*s.dst = val
			c.sources[s.name] = SourceEnvironment
		}
	}

	if val := os.Getenv("PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", val, err)
		}
		c.Port = port
		c.sources["port"] = SourceEnvironment
	}
	if val := os.Getenv("EZRA_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = SourceEnvironment
	}
	if val := os.Getenv("EZRA_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = SourceEnvironment
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *EzraConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *EzraConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// ListenAddress returns host:port for the HTTP listener
func (c *EzraConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// AuthEnabled reports whether /api requires a bearer token
func (c *EzraConfig) AuthEnabled() bool {
	return c.JWTSecret != ""
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return jsonName(f.Tag.Get("json"), f.Name)
		})
	})
	return validate
}

// Validate validates the configuration
func (c *EzraConfig) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 65535", fe.Field())
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ip|hostname":
		return fmt.Sprintf("%s must be an IP address or hostname", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// Attributes returns all configuration attributes with their values and sources
func (c *EzraConfig) Attributes() []Attribute {
	secret := ""
	if c.JWTSecret != "" {
		secret = "(set)"
	}
	return []Attribute{
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "storage_driver", Value: c.StorageDriver, Source: c.Source("storage_driver")},
		{Name: "data_dir", Value: c.DataDir, Source: c.Source("data_dir")},
		{Name: "backup_dir", Value: c.BackupDir, Source: c.Source("backup_dir")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "jwt_secret", Value: secret, Source: c.Source("jwt_secret")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *EzraConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *EzraConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonName returns the attribute name used in validation messages
func jsonName(tag, fallback string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return fallback
	}
	return name
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
