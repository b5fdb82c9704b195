package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// LoadRolePolicy reads the resolver policy from a YAML file. An empty path
// returns the default policy; fields missing from the file keep their
// defaults.
func LoadRolePolicy(path string) (services.RolePolicy, error) {
	policy := services.DefaultRolePolicy()
	if path == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read role policy: %w", err)
	}
	return ParseRolePolicy(data)
}

func ParseRolePolicy(data []byte) (services.RolePolicy, error) {
	policy := services.DefaultRolePolicy()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse role policy: %w", err)
	}
	if policy.AdminPrefix == "" && len(policy.AdminAllowlist) == 0 {
		return policy, fmt.Errorf("role policy grants admin to nobody")
	}
	return policy, nil
}

// DemoBypass turns the demo settings into the auth service's bypass list.
func (c *Config) DemoBypass() services.DemoBypass {
	bypass := services.DemoBypass{Enabled: c.Demo.BypassEnabled && !c.IsProduction()}
	if c.Demo.AdminPassword != "" {
		bypass.Credentials = append(bypass.Credentials, services.DemoCredential{
			Email: c.Demo.AdminEmail, Password: c.Demo.AdminPassword, Role: domain.RoleAdmin,
		})
	}
	if c.Demo.FacultyPassword != "" {
		bypass.Credentials = append(bypass.Credentials, services.DemoCredential{
			Email: c.Demo.FacultyEmail, Password: c.Demo.FacultyPassword, Role: domain.RoleFaculty,
		})
	}
	return bypass
}
