package gates

import (
	"slices"
)

// Evaluator decides feature visibility from a static table. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	features     []Feature
	byKey        map[string]Feature
	fallbackRole Role
	adminBypass  bool
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithFeatures replaces the built-in table.
func WithFeatures(features []Feature) Option {
	return func(e *Evaluator) {
		e.features = features
	}
}

// WithUnknownRoleFallback sets the role unknown or empty roles normalize to.
// The default is admin, which combined with the admin bypass grants every
// feature to callers whose role could not be determined.
func WithUnknownRoleFallback(r Role) Option {
	return func(e *Evaluator) {
		if _, ok := knownRoles[r]; ok {
			e.fallbackRole = r
		}
	}
}

// WithAdminBypass toggles the rule that admin is allowed everything.
func WithAdminBypass(enabled bool) Option {
	return func(e *Evaluator) {
		e.adminBypass = enabled
	}
}

// New builds an Evaluator over DefaultFeatures unless overridden.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		features:     DefaultFeatures(),
		fallbackRole: RoleAdmin,
		adminBypass:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.byKey = make(map[string]Feature, len(e.features))
	for _, f := range e.features {
		e.byKey[f.Key] = f
	}
	return e
}

// UnknownRoleFallback returns the configured fallback role.
func (e *Evaluator) UnknownRoleFallback() Role { return e.fallbackRole }

// AdminBypass reports whether the admin bypass is active.
func (e *Evaluator) AdminBypass() bool { return e.adminBypass }

// Features returns the gate table in display order.
func (e *Evaluator) Features() []Feature {
	return slices.Clone(e.features)
}

func (e *Evaluator) normalizeRole(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return e.fallbackRole
}

// Evaluate decides one feature for subject. Unknown feature keys carry no
// restriction and are reported with Known=false.
func (e *Evaluator) Evaluate(featureKey string, subject Subject) Decision {
	plan := NormalizePlan(subject.PlanTier)
	role := e.normalizeRole(subject.Role)

	feature, known := e.byKey[featureKey]
	if !known {
		feature = Feature{Key: featureKey}
	}

	planAllowed := feature.RequiredPlan == "" || plan.Rank() >= feature.RequiredPlan.Rank()
	roleAllowed := len(feature.AllowedRoles) == 0 || slices.Contains(feature.AllowedRoles, role)

	d := Decision{
		FeatureKey:   featureKey,
		Known:        known,
		RoleAllowed:  roleAllowed,
		PlanAllowed:  planAllowed,
		RequiredPlan: feature.RequiredPlan,
		AllowedRoles: slices.Clone(feature.AllowedRoles),
		Badge:        feature.Badge,
		Title:        feature.Title,
		Description:  feature.Description,
		Plan:         plan,
		Role:         role,
	}
	if e.adminBypass && role == RoleAdmin {
		d.Allowed = true
		d.Bypassed = !(roleAllowed && planAllowed)
		return d
	}
	d.Allowed = roleAllowed && planAllowed
	return d
}

// EvaluateAll decides every feature in table order.
func (e *Evaluator) EvaluateAll(subject Subject) []Decision {
	out := make([]Decision, 0, len(e.features))
	for _, f := range e.features {
		out = append(out, e.Evaluate(f.Key, subject))
	}
	return out
}
