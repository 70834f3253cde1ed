package workspace

import (
	"time"

	"github.com/matheus3301/huddle/internal/config"
)

const (
	DefaultName     = "main"
	DefaultHTTPAddr = "127.0.0.1:7420"
)

// Resolve determines the active workspace name using precedence:
// 1. flagOverride (--workspace flag)
// 2. config.toml default_workspace
// 3. "main"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	cfg := LoadConfig()
	if cfg.DefaultWorkspace != "" {
		return cfg.DefaultWorkspace
	}
	return DefaultName
}

// ResolveUser returns flagOverride, else the configured user_id.
func ResolveUser(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	return LoadConfig().UserID
}

// LoadConfig reads config.toml, returning an empty config when it is
// missing or invalid. Binaries that must report a bad file call config.Load.
func LoadConfig() *config.Config {
	cfg, err := config.Load(ConfigPath())
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

// HTTPAddr returns the configured gateway address, or DefaultHTTPAddr.
func HTTPAddr(cfg *config.Config) string {
	if cfg.HTTPAddr != "" {
		return cfg.HTTPAddr
	}
	return DefaultHTTPAddr
}

// IdentityTimeout returns the configured identity lookup timeout; zero means
// the synchronizer default.
func IdentityTimeout(cfg *config.Config) time.Duration {
	return cfg.IdentityTimeout.Std()
}
