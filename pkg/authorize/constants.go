package authorize

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Power actions
	ActionManage  Action = "manage"  // CRUD + list
	ActionExecute Action = "execute" // checkout, pay, redeem

	// Lesson lifecycle
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionComplete   Action = "complete"
)

const WildcardAction Action = "*"

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {}, ActionExecute: {},
	ActionCancel: {}, ActionReschedule: {}, ActionComplete: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceProfile Resource = "profile"

	// Catalog
	ResourcePlan       Resource = "plan"
	ResourceInstructor Resource = "instructor"

	// Purchasing
	ResourceCart     Resource = "cart"
	ResourcePurchase Resource = "purchase"
	ResourceGiftCard Resource = "gift_card"

	// Scheduling
	ResourceAppointment Resource = "appointment"

	// Portals
	ResourcePortalStudent    Resource = "portal_student"
	ResourcePortalInstructor Resource = "portal_instructor"
	ResourcePortalAdmin      Resource = "portal_admin"

	// Community
	ResourceReview   Resource = "review"
	ResourceReferral Resource = "referral"
)

var KnownResources = map[Resource]struct{}{
	ResourceProfile: {},
	ResourcePlan:    {}, ResourceInstructor: {},
	ResourceCart: {}, ResourcePurchase: {}, ResourceGiftCard: {},
	ResourceAppointment:   {},
	ResourcePortalStudent: {}, ResourcePortalInstructor: {}, ResourcePortalAdmin: {},
	ResourceReview: {}, ResourceReferral: {},
}

// ----------------------------
// Roles
// ----------------------------

const (
	RoleStudent    Role = "role:student"
	RoleInstructor Role = "role:instructor"
	RoleAdmin      Role = "role:admin"
)

var KnownRoles = map[Role]struct{}{
	RoleStudent:    {},
	RoleInstructor: {},
	RoleAdmin:      {},
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
