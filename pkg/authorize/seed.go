package authorize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
)

// DefaultPolicies is the baseline permission set of the trial.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Patients: own profile, sessions and daily report
		{RoleTrialPatient, DomainTrial, ResourceProfile, ActionRead, EffectAllow},
		{RoleTrialPatient, DomainTrial, ResourceAuthSession, ActionManage, EffectAllow},
		{RoleTrialPatient, DomainTrial, ResourceTriage, ActionExecute, EffectAllow},
		{RoleTrialPatient, DomainTrial, ResourceTriage, ActionRead, EffectAllow},

		// Clinical team
		{RoleTrialStaff, DomainTrial, ResourceProfile, ActionRead, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceAuthSession, ActionManage, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceRoster, ActionRead, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourcePatient, ActionManage, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceEnrollment, ActionManage, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceHistory, ActionRead, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceSession, ActionManage, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceSession, ActionExecute, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceExport, ActionExecute, EffectAllow},
		{RoleTrialStaff, DomainTrial, ResourceEnrollQR, ActionRead, EffectAllow},

		// Staff never submit self-reports
		{RoleTrialStaff, DomainTrial, ResourceTriage, ActionExecute, EffectDeny},
	}
}

// SeedDefaultPolicies sets up the baseline RBAC policies. Safe to run on every migrate.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// AssignPrincipalRole groups the caller into its trial role. Called at login;
// an existing grouping is left untouched.
func AssignPrincipalRole(ctx context.Context, auth IAuthorization, p principal.AuthenticatedContext) error {
	role, ok := RoleOf(p)
	if !ok {
		return fmt.Errorf("%w: principal role %q", ErrInvalidArgs, p.Role())
	}
	_, err := auth.AddRoleForUserInDomain(ctx, SubjectOf(p), role, DomainTrial)
	return err
}
