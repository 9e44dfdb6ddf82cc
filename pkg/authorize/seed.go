package authorize

import (
	"context"
	"fmt"
)

// DefaultPolicies is the baseline permission table.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Admin: runs the school
		{RoleAdmin, ResourcePlan, ActionManage, EffectAllow},
		{RoleAdmin, ResourceInstructor, ActionManage, EffectAllow},
		{RoleAdmin, ResourceGiftCard, ActionManage, EffectAllow},
		{RoleAdmin, ResourcePortalAdmin, ActionRead, EffectAllow},
		{RoleAdmin, ResourceAppointment, ActionList, EffectAllow},
		{RoleAdmin, ResourceProfile, ActionManage, EffectAllow},

		// Instructor: own calendar
		{RoleInstructor, ResourcePortalInstructor, ActionRead, EffectAllow},
		{RoleInstructor, ResourceAppointment, ActionRead, EffectAllow},
		{RoleInstructor, ResourceAppointment, ActionList, EffectAllow},
		{RoleInstructor, ResourceAppointment, ActionComplete, EffectAllow},
		{RoleInstructor, ResourceProfile, ActionManage, EffectAllow},

		// Student: buy and book
		{RoleStudent, ResourcePortalStudent, ActionRead, EffectAllow},
		{RoleStudent, ResourceCart, ActionManage, EffectAllow},
		{RoleStudent, ResourceCart, ActionExecute, EffectAllow},
		{RoleStudent, ResourcePurchase, ActionManage, EffectAllow},
		{RoleStudent, ResourcePurchase, ActionExecute, EffectAllow},
		{RoleStudent, ResourceAppointment, ActionCreate, EffectAllow},
		{RoleStudent, ResourceAppointment, ActionRead, EffectAllow},
		{RoleStudent, ResourceAppointment, ActionList, EffectAllow},
		{RoleStudent, ResourceAppointment, ActionCancel, EffectAllow},
		{RoleStudent, ResourceAppointment, ActionReschedule, EffectAllow},
		{RoleStudent, ResourceGiftCard, ActionExecute, EffectAllow},
		{RoleStudent, ResourceReferral, ActionCreate, EffectAllow},
		{RoleStudent, ResourceReview, ActionCreate, EffectAllow},
		{RoleStudent, ResourceProfile, ActionManage, EffectAllow},
	}
}

// SeedDefaultPolicies loads DefaultPolicies into auth.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	for _, p := range DefaultPolicies() {
		if _, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action, p.Effect); err != nil {
			return fmt.Errorf("seed policy %s %s %s: %w", p.Subject, p.Object, p.Action, err)
		}
	}
	return nil
}

// NewDefault builds an enforcer and seeds the baseline policies.
func NewDefault(ctx context.Context) (*Authorization, error) {
	e, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	auth, err := NewAuthorization(e)
	if err != nil {
		return nil, err
	}
	if err := SeedDefaultPolicies(ctx, auth); err != nil {
		return nil, err
	}
	return auth, nil
}
