package services

import (
	"fmt"
	"slices"

	"github.com/casbin/casbin/v2"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/infrastructure/auth"
)

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

var _ domain.PolicyService = (*PolicyServiceImpl)(nil)

func NewPolicyService(enforcer *casbin.Enforcer) *PolicyServiceImpl {
	return NewPolicyServiceWithEnforcer(enforcer)
}

// NewPolicyServiceWithEnforcer creates a policy service over any enforcer (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// AddPolicy grants role the action on resource. Persisting enforcers save the grant as it is added.
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return fmt.Errorf("add policy %s %s %s: %w", role, resource, action, err)
	}
	return nil
}

func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	allowed, err := p.enforcer.Enforce(role, resource, action)
	if err != nil {
		return false, fmt.Errorf("enforce %s %s for %s: %w", action, resource, role, err)
	}
	return allowed, nil
}

// GetPolicies lists every grant. A failing enforcer yields none.
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, err := p.enforcer.GetPolicy()
	if err != nil {
		return nil
	}
	return policies
}

// SeedPolicies adds each grant the policy set does not hold yet
func SeedPolicies(policy domain.PolicyService, grants [][]string) error {
	existing := policy.GetPolicies()
	for _, g := range grants {
		if slices.ContainsFunc(existing, func(p []string) bool { return slices.Equal(p, g) }) {
			continue
		}
		if len(g) != 3 {
			return fmt.Errorf("seed policy %v: want role, resource and action", g)
		}
		if err := policy.AddPolicy(g[0], g[1], g[2]); err != nil {
			return fmt.Errorf("seed policy: %w", err)
		}
	}
	return nil
}

// RoleFor returns the role of a caller with or without a signed-in session
func RoleFor(signedIn bool) string {
	if signedIn {
		return auth.RoleUser
	}
	return auth.RoleAnonymous
}
