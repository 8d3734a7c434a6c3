package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
)

// Policy holds the scheduling rules operators may tune without a deploy.
type Policy struct {
	ServiceTypes           []string `yaml:"serviceTypes" validate:"dive,required,max=64"`
	AutoPublish            []string `yaml:"autoPublish" validate:"dive,required"`
	AssignableRoles        []string `yaml:"assignableRoles" validate:"required,min=1,dive,oneof=admin scheduler supervisor cleaner"`
	DefaultApprovalComment string   `yaml:"defaultApprovalComment" validate:"required,max=200"`
	MaxRecurrence          int      `yaml:"maxRecurrence" validate:"min=1,max=366"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func DefaultPolicy() *Policy {
	return &Policy{
		ServiceTypes:           []string{shift.ServiceTypeStandard, shift.ServiceTypeFix, shift.ServiceTypeInspection},
		AutoPublish:            append([]string(nil), shift.DefaultAutoPublish...),
		AssignableRoles:        []string{string(user.RoleCleaner), string(user.RoleSupervisor)},
		DefaultApprovalComment: audit.DefaultApprovalComment,
		MaxRecurrence:          90,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults.
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func ValidatePolicy(p *Policy) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}
	known := make(map[string]bool, len(p.ServiceTypes)+3)
	for _, t := range append(p.ServiceTypes, shift.ServiceTypeStandard, shift.ServiceTypeFix, shift.ServiceTypeInspection) {
		known[t] = true
	}
	for _, t := range p.AutoPublish {
		if !known[t] {
			return fmt.Errorf("autoPublish entry %q is not a known service type", t)
		}
	}
	return nil
}
