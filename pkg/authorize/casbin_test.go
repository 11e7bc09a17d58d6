package authorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

const testModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || p.obj == r.obj) && (p.act == "*" || p.act == r.act || (p.act == "manage" && r.act != "execute"))
`

// createTestEnforcer creates a file-backed Casbin enforcer with an empty policy.
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	tmpDir := t.TempDir()

	modelPath := filepath.Join(tmpDir, "model.conf")
	if err := os.WriteFile(modelPath, []byte(testModel), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}

	policyPath := filepath.Join(tmpDir, "policy.csv")
	if err := os.WriteFile(policyPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(modelPath, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}

	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e
}

func seededAuthorization(t *testing.T) IAuthorization {
	t.Helper()

	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("NewAuthorization: %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("SeedDefaultPolicies: %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil)
		if !errors.Is(err, ErrInvalidArgs) {
			t.Errorf("Expected ErrInvalidArgs, got %v", err)
		}
	})

	t.Run("succeeds with valid enforcer", func(t *testing.T) {
		auth, err := NewAuthorization(createTestEnforcer(t))
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if auth == nil {
			t.Error("Expected non-nil authorization")
		}
	})
}

func TestEnforceDefaultPolicies(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	patient := principal.ForPatient("P-001", prescription.CohortBreast, prescription.ArmExperimental)
	staff := principal.ForStaff("coordinator")

	for _, p := range []principal.AuthenticatedContext{patient, staff} {
		if err := AssignPrincipalRole(ctx, auth, p); err != nil {
			t.Fatalf("AssignPrincipalRole(%s): %v", p.Subject(), err)
		}
	}

	tests := []struct {
		name     string
		subject  GroupSubject
		resource Resource
		action   Action
		want     bool
	}{
		{"patient submits triage", SubjectOf(patient), ResourceTriage, ActionExecute, true},
		{"patient reads own triage", SubjectOf(patient), ResourceTriage, ActionRead, true},
		{"patient cannot read roster", SubjectOf(patient), ResourceRoster, ActionRead, false},
		{"patient cannot export", SubjectOf(patient), ResourceExport, ActionExecute, false},
		{"staff reads roster", SubjectOf(staff), ResourceRoster, ActionRead, true},
		{"staff manage covers create", SubjectOf(staff), ResourcePatient, ActionCreate, true},
		{"staff manage covers list", SubjectOf(staff), ResourceEnrollment, ActionUpdate, true},
		{"staff records sessions", SubjectOf(staff), ResourceSession, ActionExecute, true},
		{"staff denied triage submit", SubjectOf(staff), ResourceTriage, ActionExecute, false},
		{"manage does not imply execute", SubjectOf(staff), ResourcePatient, ActionExecute, false},
		{"unknown subject", GroupSubject("patient:P-999"), ResourceTriage, ActionExecute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.subject, DomainTrial, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnforceRejectsBadArguments(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		subject  GroupSubject
		domain   Domain
		resource Resource
		action   Action
	}{
		{"empty subject", "", DomainTrial, ResourceTriage, ActionRead},
		{"invalid domain", "staff:x", Domain("clinic"), ResourceTriage, ActionRead},
		{"unknown resource", "staff:x", DomainTrial, Resource("billing"), ActionRead},
		{"unknown action", "staff:x", DomainTrial, ResourceTriage, Action("delete")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Enforce(ctx, tt.subject, tt.domain, tt.resource, tt.action)
			if !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("Expected ErrInvalidArgs, got %v", err)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := seededAuthorization(t)
	ctx := context.Background()

	patient := principal.ForPatient("P-002", prescription.CohortProstate, prescription.ArmControl)
	if err := AssignPrincipalRole(ctx, auth, patient); err != nil {
		t.Fatalf("AssignPrincipalRole: %v", err)
	}

	t.Run("returns nil when allowed", func(t *testing.T) {
		if err := auth.MustEnforce(ctx, SubjectOf(patient), DomainTrial, ResourceTriage, ActionExecute); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("returns ErrForbidden when denied", func(t *testing.T) {
		err := auth.MustEnforce(ctx, SubjectOf(patient), DomainTrial, ResourceSession, ActionExecute)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})
}

func TestRoleManagement(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))
	ctx := context.Background()
	subject := GroupSubject("staff:nurse")

	t.Run("add and get roles", func(t *testing.T) {
		added, err := auth.AddRoleForUserInDomain(ctx, subject, RoleTrialStaff, DomainTrial)
		if err != nil {
			t.Fatalf("Failed to add role: %v", err)
		}
		if !added {
			t.Error("Expected role to be added")
		}

		again, err := auth.AddRoleForUserInDomain(ctx, subject, RoleTrialStaff, DomainTrial)
		if err != nil {
			t.Fatalf("Failed to re-add role: %v", err)
		}
		if again {
			t.Error("Expected existing grouping to be left alone")
		}

		roles, err := auth.GetRolesForUserInDomain(ctx, subject, DomainTrial)
		if err != nil {
			t.Fatalf("Failed to get roles: %v", err)
		}
		if len(roles) != 1 || roles[0] != RoleTrialStaff {
			t.Errorf("roles = %v, want [%s]", roles, RoleTrialStaff)
		}
	})

	t.Run("remove role", func(t *testing.T) {
		removed, err := auth.RemoveRoleForUserInDomain(ctx, subject, RoleTrialStaff, DomainTrial)
		if err != nil {
			t.Fatalf("Failed to remove role: %v", err)
		}
		if !removed {
			t.Error("Expected role to be removed")
		}

		roles, _ := auth.GetRolesForUserInDomain(ctx, subject, DomainTrial)
		if len(roles) != 0 {
			t.Errorf("Expected 0 roles after removal, got %d", len(roles))
		}
	})

	t.Run("error for invalid role", func(t *testing.T) {
		_, err := auth.AddRoleForUserInDomain(ctx, subject, Role("role:clinic:owner"), DomainTrial)
		if err == nil {
			t.Error("Expected error for invalid role")
		}
	})
}

func TestPermissionManagement(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))
	ctx := context.Background()

	t.Run("add and remove permission", func(t *testing.T) {
		added, err := auth.AddPermission(ctx, RoleTrialStaff, DomainTrial, ResourceExport, ActionExecute, EffectAllow)
		if err != nil {
			t.Fatalf("Failed to add permission: %v", err)
		}
		if !added {
			t.Error("Expected permission to be added")
		}

		removed, err := auth.RemovePermission(ctx, RoleTrialStaff, DomainTrial, ResourceExport, ActionExecute, EffectAllow)
		if err != nil {
			t.Fatalf("Failed to remove permission: %v", err)
		}
		if !removed {
			t.Error("Expected permission to be removed")
		}
	})

	t.Run("error for invalid effect", func(t *testing.T) {
		_, err := auth.AddPermission(ctx, RoleTrialStaff, DomainTrial, ResourceRoster, ActionRead, PolicyEffect("maybe"))
		if err == nil {
			t.Error("Expected error for invalid effect")
		}
	})
}

func TestAssignPrincipalRoleRejectsZeroPrincipal(t *testing.T) {
	auth, _ := NewAuthorization(createTestEnforcer(t))

	err := AssignPrincipalRole(context.Background(), auth, principal.AuthenticatedContext{})
	if !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs, got %v", err)
	}
}
