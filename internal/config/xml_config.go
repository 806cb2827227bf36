// Package config provides XML-based configuration management for the export service.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFileName is the config file looked up next to the binary.
const DefaultFileName = "th2export.config"

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"Th2Export"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Export configuration
	Export ExportConfig `xml:"Export"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains export storage settings
type StorageConfig struct {
	DataDirectory     string `xml:"DataDirectory"`
	ExportsDirectory  string `xml:"ExportsDirectory"`
	EnablePersistence bool   `xml:"EnablePersistence"`
}

// ExportConfig contains conversion settings
type ExportConfig struct {
	DefaultFileName   string `xml:"DefaultFileName"`
	AllowedInputTypes string `xml:"AllowedInputTypes"`
	MaxLayers         int    `xml:"MaxLayers"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowFileDeletion bool `xml:"AllowFileDeletion"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Storage: StorageConfig{
			DataDirectory:     "./data",
			ExportsDirectory:  "./data/exports",
			EnablePersistence: true,
		},
		Export: ExportConfig{
			DefaultFileName:   "drawing.th2",
			AllowedInputTypes: ".json,.yaml,.yml,.msgpack,.mpk",
			MaxLayers:         0,
		},
		Security: SecurityConfig{
			AllowFileDeletion: true,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- th2 export service configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if exportsDir := os.Getenv("EXPORTS_DIR"); exportsDir != "" {
		c.Storage.ExportsDirectory = exportsDir
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.ExportsDirectory) {
		c.Storage.ExportsDirectory = filepath.Join(configDir, c.Storage.ExportsDirectory)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetExportsDir returns the absolute exports directory path
func (c *AppConfig) GetExportsDir() string {
	return c.Storage.ExportsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AllowsInput reports whether a file name has one of the allowed input
// extensions. An empty list allows everything.
func (c ExportConfig) AllowsInput(fileName string) bool {
	allowed := strings.TrimSpace(c.AllowedInputTypes)
	if allowed == "" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range strings.Split(allowed, ",") {
		if strings.ToLower(strings.TrimSpace(a)) == ext {
			return true
		}
	}
	return false
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.ExportsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
