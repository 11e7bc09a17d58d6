package authorize

import (
	"fmt"
	"regexp"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionList   Action = "list"

	ActionManage  Action = "manage"  // CRUD + list
	ActionExecute Action = "execute" // submit, record, publish
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionList: {},
	ActionManage: {}, ActionExecute: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity
	ResourceProfile     Resource = "profile"
	ResourceAuthSession Resource = "auth_session"

	// Patient self-report
	ResourceTriage Resource = "triage"

	// Clinical team
	ResourceRoster     Resource = "roster"
	ResourcePatient    Resource = "patient"
	ResourceEnrollment Resource = "enrollment"
	ResourceHistory    Resource = "history"
	ResourceSession    Resource = "session"
	ResourceExport     Resource = "export"
	ResourceEnrollQR   Resource = "enroll_qr"
)

var KnownResources = map[Resource]struct{}{
	ResourceProfile: {}, ResourceAuthSession: {},
	ResourceTriage: {},
	ResourceRoster: {}, ResourcePatient: {}, ResourceEnrollment: {}, ResourceHistory: {},
	ResourceSession: {}, ResourceExport: {}, ResourceEnrollQR: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Principals are grouped into these roles inside the trial domain.

const (
	WildcardRole Role = "*"

	RoleTrialPatient Role = "role:trial:patient"
	RoleTrialStaff   Role = "role:trial:staff"
)

var KnownRoles = map[Role]struct{}{
	RoleTrialPatient: {},
	RoleTrialStaff:   {},
}

var RoleDisplayNamesES = map[Role]string{
	RoleTrialPatient: "Paciente",
	RoleTrialStaff:   "Equipo clínico",
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainTrial    Domain = "trial"
	WildcardDomain Domain = "*"

	DomainPrefixPatient Domain = "patient:"
)

var rePatientID = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,31}$`)

// PatientDomain scopes policies to a single participant's own data.
func PatientDomain(patientID string) Domain {
	return Domain(fmt.Sprintf("%s%s", DomainPrefixPatient, patientID))
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainTrial || d == WildcardDomain {
		return true
	}

	s := string(d)
	if len(s) > len(DomainPrefixPatient) && s[:len(DomainPrefixPatient)] == string(DomainPrefixPatient) {
		return rePatientID.MatchString(s[len(DomainPrefixPatient):])
	}
	return false
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete principal ("patient:<id>", "staff:<id>").
type GroupSubject string

// Grouping rows: g, subject, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
