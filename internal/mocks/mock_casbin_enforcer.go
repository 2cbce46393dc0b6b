package mocks

import (
	"slices"
	"strings"

	"github.com/peekpark/peekpark/domain"
)

// MockCasbinEnforcer implements domain.CasbinEnforcer over an in-memory rule list.
// role_user inherits role_anonymous and a trailing /* matches any suffix.
type MockCasbinEnforcer struct {
	AddPolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc   func(rvals ...interface{}) (bool, error)
	GetPolicyFunc func() ([][]string, error)

	rules [][]string
}

var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates an enforcer seeded with the local API's grants
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{
		rules: [][]string{
			{"role_anonymous", "/auth/otp/*", "POST"},
			{"role_anonymous", "/auth/logout", "POST"},
			{"role_anonymous", "/parking/*", "GET"},
			{"role_user", "/auth/me", "GET"},
		},
	}
}

func toRule(params []interface{}) ([]string, bool) {
	if len(params) != 3 {
		return nil, false
	}
	rule := make([]string, 0, 3)
	for _, p := range params {
		s, ok := p.(string)
		if !ok {
			return nil, false
		}
		rule = append(rule, s)
	}
	return rule, true
}

func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	rule, ok := toRule(params)
	if !ok || slices.ContainsFunc(m.rules, func(r []string) bool { return slices.Equal(r, rule) }) {
		return false, nil
	}
	m.rules = append(m.rules, rule)
	return true, nil
}

func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	req, ok := toRule(rvals)
	if !ok {
		return false, nil
	}

	roles := []string{req[0]}
	if req[0] == "role_user" {
		roles = append(roles, "role_anonymous")
	}
	for _, r := range m.rules {
		if !slices.Contains(roles, r[0]) || r[2] != req[2] {
			continue
		}
		if r[1] == req[1] || (strings.HasSuffix(r[1], "/*") && strings.HasPrefix(req[1], strings.TrimSuffix(r[1], "*"))) {
			return true, nil
		}
	}
	return false, nil
}

// GetPolicy returns a copy of the rules
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	out := make([][]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = slices.Clone(r)
	}
	return out, nil
}
