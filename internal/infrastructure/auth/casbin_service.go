package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// Roles derived from the device's session state
const (
	RoleAnonymous = "role_anonymous"
	RoleUser      = "role_user"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// DefaultPolicies grant every route the local API exposes. role_user inherits role_anonymous,
// which NewCasbinService seeds. The grants themselves are seeded through the policy service.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/health", "GET"},
	{RoleAnonymous, "/metrics", "GET"},
	{RoleAnonymous, "/device", "GET"},
	{RoleAnonymous, "/auth/otp/*", "POST"},
	{RoleAnonymous, "/auth/logout", "POST"},
	{RoleAnonymous, "/parking/*", "GET"},
	{RoleUser, "/auth/me", "GET"},
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an enforcer persisting policies through db. A nil db keeps policies in memory.
// The gorm adapter saves every added or removed policy as it happens.
func NewCasbinService(db *gorm.DB) (*CasbinService, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var e *casbin.Enforcer
	if db != nil {
		adp, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, fmt.Errorf("create casbin adapter: %w", err)
		}
		e, err = casbin.NewEnforcer(m, adp)
		if err != nil {
			return nil, err
		}
		if err := e.LoadPolicy(); err != nil {
			return nil, err
		}
	} else {
		e, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, err
		}
	}

	if err := seed(e); err != nil {
		return nil, err
	}
	return &CasbinService{e}, nil
}

func seed(e *casbin.Enforcer) error {
	if ok, _ := e.HasGroupingPolicy(RoleUser, RoleAnonymous); ok {
		return nil
	}
	if _, err := e.AddGroupingPolicy(RoleUser, RoleAnonymous); err != nil {
		return fmt.Errorf("seed role inheritance: %w", err)
	}
	return nil
}
