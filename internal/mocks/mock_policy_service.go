package mocks

import "github.com/peekpark/peekpark/domain"

// MockPolicyService implements domain.PolicyService. By default every route is open
// except /auth/me, which needs role_user.
type MockPolicyService struct {
	AddPolicyFunc       func(role, resource, action string) error
	CheckPermissionFunc func(role, resource, action string) (bool, error)
	GetPoliciesFunc     func() [][]string
}

var _ domain.PolicyService = (*MockPolicyService)(nil)

func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

func (m *MockPolicyService) AddPolicy(role, resource, action string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	return nil
}

func (m *MockPolicyService) CheckPermission(role, resource, action string) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	if resource == "/auth/me" {
		return role == "role_user", nil
	}
	return true, nil
}

func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{{"role_user", "/auth/me", "GET"}}
}
