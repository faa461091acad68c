package utils

import "testing"

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"trims spaces", "  exam schedule  ", "exam schedule"},
		{"drops null bytes", "exam\x00 schedule", "exam schedule"},
		{"drops control characters", "exam\x08\x1b schedule\x7f", "exam schedule"},
		{"keeps newlines and tabs", "line one\nline two\ttabbed", "line one\nline two\ttabbed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeInput(tc.input); got != tc.want {
				t.Fatalf("SanitizeInput(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"student@school.edu", "head.of.dept@cs.school.edu"}
	invalid := []string{"", "no-at-sign", "missing@tld", "@school.edu"}

	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}
