package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// routesFile is the on-disk shape of GATE_ROUTES_FILE.
//
//	protected: [/dashboard, /shipments]
//	guest_only: [/login, /register]
//	login_path: /login
//	default_path: /dashboard
type routesFile struct {
	Protected   []string `yaml:"protected"`
	GuestOnly   []string `yaml:"guest_only"`
	LoginPath   string   `yaml:"login_path"`
	DefaultPath string   `yaml:"default_path"`
}

// loadRoutesFile overrides gate settings with the values present in path.
func (g *GateConfig) loadRoutesFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read gate routes file: %w", err)
	}

	var file routesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse gate routes file %s: %w", path, err)
	}

	if file.Protected != nil {
		g.ProtectedRoutes = file.Protected
	}
	if file.GuestOnly != nil {
		g.GuestRoutes = file.GuestOnly
	}
	if file.LoginPath != "" {
		g.LoginPath = file.LoginPath
	}
	if file.DefaultPath != "" {
		g.DefaultPath = file.DefaultPath
	}
	return nil
}
