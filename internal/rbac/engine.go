package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/janseva/constituency-admin/internal/logging"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ReasonRoleNotFound  = "role not found"
	ReasonMissingPrefix = "missing capability: "
)

type requirementKind int

const (
	kindSingle requirementKind = iota
	kindAnyOf
	kindAllOf
)

// Requirement is the capability a route declares: one name, any of several, or all of several.
type Requirement struct {
	kind  requirementKind
	names []string
}

func Require(name string) Requirement {
	return Requirement{kind: kindSingle, names: normalizeNames([]string{name})}
}

func AnyOf(names ...string) Requirement {
	return Requirement{kind: kindAnyOf, names: normalizeNames(names)}
}

func AllOf(names ...string) Requirement {
	return Requirement{kind: kindAllOf, names: normalizeNames(names)}
}

func (r Requirement) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r Requirement) String() string {
	switch r.kind {
	case kindAnyOf:
		return "anyOf(" + strings.Join(r.names, ",") + ")"
	case kindAllOf:
		return "allOf(" + strings.Join(r.names, ",") + ")"
	default:
		return strings.Join(r.names, ",")
	}
}

// missing returns the names that make the requirement fail against granted.
func (r Requirement) missing(granted map[string]struct{}) []string {
	var absent []string
	for _, n := range r.names {
		if _, ok := granted[n]; ok {
			if r.kind == kindAnyOf {
				return nil
			}
			continue
		}
		absent = append(absent, n)
	}
	return absent
}

// keeps first-seen order, drops blanks and duplicates
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// PermissionNamer dereferences permission references to their names.
// Unknown ids are left out of the result.
type PermissionNamer interface {
	NamesByIDs(ctx context.Context, ids []bson.ObjectID) ([]string, error)
}

// Engine evaluates requirements against a principal's role. It keeps no state
// between calls.
type Engine struct {
	permissions PermissionNamer
}

func NewEngine(permissions PermissionNamer) *Engine {
	return &Engine{permissions: permissions}
}

// Decide returns Allow or Deny for the principal. A non-nil error means the
// permission lookup failed and no decision was made.
func (e *Engine) Decide(ctx context.Context, principal *Principal, req Requirement) (Decision, error) {
	if len(req.names) == 0 {
		return Decision{}, ErrEmptyRequirement
	}

	if principal == nil || principal.Role == nil {
		return e.record(principal, req, Deny(ReasonRoleNotFound)), nil
	}

	// superadmin must not depend on its stored permission list
	if IsSuperRole(principal.Role) {
		decisionsTotal.WithLabelValues(decisionAllow, "superadmin").Inc()
		return Allow(), nil
	}

	granted, err := e.EffectivePermissions(ctx, principal.Role)
	if err != nil {
		lookupErrorsTotal.Inc()
		return Decision{}, fmt.Errorf("resolving permissions for role %q: %w", principal.Role.Name, err)
	}

	set := make(map[string]struct{}, len(granted))
	for _, name := range granted {
		set[name] = struct{}{}
	}

	if absent := req.missing(set); len(absent) > 0 {
		return e.record(principal, req, Deny(ReasonMissingPrefix+strings.Join(absent, ", "))), nil
	}
	return e.record(principal, req, Allow()), nil
}

// EffectivePermissions returns the deduplicated permission names attached to role.
func (e *Engine) EffectivePermissions(ctx context.Context, role *Role) ([]string, error) {
	if role == nil || len(role.Permissions) == 0 {
		return []string{}, nil
	}
	names, err := e.permissions.NamesByIDs(ctx, role.Permissions)
	if err != nil {
		return nil, err
	}
	return normalizeNames(names), nil
}

func (e *Engine) record(principal *Principal, req Requirement, d Decision) Decision {
	if d.Allowed {
		decisionsTotal.WithLabelValues(decisionAllow, "permission").Inc()
		return d
	}
	decisionsTotal.WithLabelValues(decisionDeny, denyKind(d)).Inc()

	userID := ""
	if principal != nil && principal.User != nil {
		userID = principal.User.ID.Hex()
	}
	logging.Debug("authorization denied",
		"user_id", userID,
		"role", principal.RoleName(),
		"requirement", req.String(),
		"reason", d.Reason)
	return d
}

func denyKind(d Decision) string {
	if d.Reason == ReasonRoleNotFound {
		return "role_not_found"
	}
	return "missing_capability"
}
