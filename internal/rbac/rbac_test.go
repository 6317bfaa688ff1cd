package rbac

import "testing"

func TestCan(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleUser, ActionRead, true},
		{RoleUser, ActionWrite, true},
		{RoleUser, ActionAdmin, false},
		{RoleAdmin, ActionRead, true},
		{RoleAdmin, ActionWrite, true},
		{RoleAdmin, ActionAdmin, true},
		{Role("GHOST"), ActionRead, false},
	}
	for _, tt := range tests {
		if got := Can(tt.role, tt.action); got != tt.want {
			t.Errorf("Can(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(" admin ") != RoleAdmin {
		t.Fatal("admin spelling should normalize")
	}
	if Normalize("superuser") != RoleUser {
		t.Fatal("unknown roles fold to USER")
	}
	if Normalize("") != RoleUser {
		t.Fatal("empty role folds to USER")
	}
}
