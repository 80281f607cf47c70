package group

import (
	"regexp"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	format := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode() error = %v", err)
		}
		if !format.MatchString(code) {
			t.Fatalf("GenerateInviteCode() = %q, want 8 chars of [A-Z0-9]", code)
		}
		seen[code] = true
	}
	// 36^8 codes, a collision in 100 draws means the source is broken
	if len(seen) != 100 {
		t.Errorf("GenerateInviteCode() returned %d distinct codes out of 100", len(seen))
	}
}
