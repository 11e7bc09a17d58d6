package authorize

import (
	"testing"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		expected bool
	}{
		{"trial domain", DomainTrial, true},
		{"wildcard domain", WildcardDomain, true},
		{"patient domain", Domain("patient:P-001"), true},
		{"patient domain with underscore", Domain("patient:BR_12"), true},

		{"empty domain", Domain(""), false},
		{"random string", Domain("random"), false},
		{"patient without id", Domain("patient:"), false},
		{"lowercase patient id", Domain("patient:p-001"), false},
		{"unknown prefix", Domain("clinic:P-001"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidDomain(tt.domain)
			if result != tt.expected {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.domain, result, tt.expected)
			}
		})
	}
}

func TestPatientDomain(t *testing.T) {
	expected := Domain("patient:P-001")

	result := PatientDomain("P-001")
	if result != expected {
		t.Errorf("PatientDomain() = %q, want %q", result, expected)
	}
}

func TestDefaultPoliciesUseKnownConstants(t *testing.T) {
	for _, p := range DefaultPolicies() {
		if _, ok := KnownRoles[p.Subject]; !ok {
			t.Errorf("policy %+v uses unknown role", p)
		}
		if _, ok := KnownResources[p.Object]; !ok {
			t.Errorf("policy %+v uses unknown resource", p)
		}
		if _, ok := KnownActions[p.Action]; !ok {
			t.Errorf("policy %+v uses unknown action", p)
		}
		if !IsValidDomain(p.Domain) {
			t.Errorf("policy %+v uses invalid domain", p)
		}
	}
}

func TestRoleDisplayNamesES(t *testing.T) {
	for role := range KnownRoles {
		if name, ok := RoleDisplayNamesES[role]; !ok || name == "" {
			t.Errorf("Expected role %q to have a display name", role)
		}
	}
}
