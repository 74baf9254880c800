package rbac

import "testing"

func TestRolePolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"faculty", "bank:upload", true},
		{"faculty", "bank:extract", true},
		{"faculty", "test:create", true},
		{"faculty", "attempt:submit", false},
		{"student", "attempt:submit", true},
		{"student", "test:view", true},
		{"student", "bank:upload", false},
		{"student", "test:create", false},
		{"", "test:view", false},
		{"nobody", "test:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("Has(%q,%q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardMatch(t *testing.T) {
	c := NewChecker(map[string][]string{"root": {"*"}, "bank": {"bank:*"}})
	if !c.Has("root", "anything:at-all") {
		t.Fatalf("expected * to match everything")
	}
	if !c.Has("bank", "bank:upload") || c.Has("bank", "test:view") {
		t.Fatalf("prefix wildcard mismatch")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "attempt:view-own", "attempt:view-all") {
		t.Fatalf("expected student to hold one of the view perms")
	}
	if c.Any("student", "bank:upload", "bank:extract") {
		t.Fatalf("student must not hold bank perms")
	}
}
