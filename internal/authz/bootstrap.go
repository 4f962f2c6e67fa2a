package authz

import (
	"fmt"

	"github.com/inkpost/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色：admin 拥有全部管理端路由，editor 仅登记
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:     constants.AdminRoleAdmin,
			Policies: []Policy{{Object: "/admin/*", Action: "*"}},
		},
		{
			Role: constants.AdminRoleEditor,
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色与策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		if _, err := s.EnsureRole(seed.Role); err != nil {
			return fmt.Errorf("bootstrap role %s: %w", seed.Role, err)
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("bootstrap policy %s %s: %w", policy.Action, policy.Object, err)
			}
		}
	}
	return nil
}
