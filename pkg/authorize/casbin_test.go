package authorize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
)

func newTestAuth(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewDefault(context.Background())
	require.NoError(t, err)
	return auth
}

func TestNewAuthorization_NilEnforcer(t *testing.T) {
	_, err := NewAuthorization(nil)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestEnforce_DefaultPolicies(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		role    Role
		object  Resource
		action  Action
		allowed bool
	}{
		{"student books", RoleStudent, ResourceAppointment, ActionCreate, true},
		{"student cancels", RoleStudent, ResourceAppointment, ActionCancel, true},
		{"student cannot complete", RoleStudent, ResourceAppointment, ActionComplete, false},
		{"student checkout via manage", RoleStudent, ResourceCart, ActionRead, true},
		{"student no admin portal", RoleStudent, ResourcePortalAdmin, ActionRead, false},
		{"instructor completes", RoleInstructor, ResourceAppointment, ActionComplete, true},
		{"instructor cannot book", RoleInstructor, ResourceAppointment, ActionCreate, false},
		{"admin manages plans", RoleAdmin, ResourcePlan, ActionDelete, true},
		{"admin issues gift cards", RoleAdmin, ResourceGiftCard, ActionCreate, true},
		{"admin no cart", RoleAdmin, ResourceCart, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := auth.Enforce(ctx, tt.role, tt.object, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}
}

func TestEnforce_Guardrails(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	ok, err := auth.Enforce(ctx, "", ResourcePlan, ActionRead)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.Enforce(ctx, Role("role:ghost"), ResourcePlan, ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = auth.Enforce(ctx, RoleAdmin, Resource("spaceship"), ActionRead)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestMustEnforce_DenyOverrides(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, auth.MustEnforce(ctx, RoleStudent, ResourceReview, ActionCreate))

	added, err := auth.AddPermission(ctx, RoleStudent, ResourceReview, ActionCreate, EffectDeny)
	require.NoError(t, err)
	assert.True(t, added)

	err = auth.MustEnforce(ctx, RoleStudent, ResourceReview, ActionCreate)
	assert.True(t, errors.Is(err, ErrForbidden))

	removed, err := auth.RemovePermission(ctx, RoleStudent, ResourceReview, ActionCreate, EffectDeny)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, auth.MustEnforce(ctx, RoleStudent, ResourceReview, ActionCreate))
}

func TestAuditedAuthorization_Delegates(t *testing.T) {
	audited := NewAuditedAuthorization(newTestAuth(t), logs.Discard())
	ctx := context.Background()

	assert.NoError(t, audited.MustEnforce(ctx, RoleAdmin, ResourcePortalAdmin, ActionRead))
	assert.ErrorIs(t, audited.MustEnforce(ctx, RoleInstructor, ResourcePortalAdmin, ActionRead), ErrForbidden)

	_, err := audited.AddPermission(ctx, RoleAdmin, ResourcePlan, ActionRead, PolicyEffect("maybe"))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}
