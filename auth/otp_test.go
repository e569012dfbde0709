package auth

import "testing"

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp := GenerateOTP(6)
		if len(otp) != 6 {
			t.Fatalf("otp %q has length %d, want 6", otp, len(otp))
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("otp %q contains non-digit %q", otp, c)
			}
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Error("50 draws produced a single value; generator looks stuck")
	}
}
