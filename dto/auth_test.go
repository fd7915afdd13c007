package dto

import "testing"

func TestLoginRequestValidate(t *testing.T) {
	cases := []struct {
		name       string
		identifier string
		wantErr    bool
	}{
		{"email", "reader@school.edu", false},
		{"username", "book_worm_3", false},
		{"username too short", "ab", true},
		{"spaces rejected", "not a login", true},
		{"bare at-sign rejected", "reader@", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := LoginRequest{EmailOrUsername: tc.identifier, Password: "secret"}
			err := req.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("expected %q to fail validation", tc.identifier)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected %q to pass validation, got %v", tc.identifier, err)
			}
		})
	}
}
