package services

import (
	"testing"
	"time"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/shared"
)

func newTestAuth(t *testing.T) (*PostgresService, *AuthService) {
	t.Helper()

	ds := &PostgresService{db: newTestDB(t)}
	jwtSvc := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-secret",
	}
	return ds, &AuthService{sqlSvc: ds, jwtSvc: jwtSvc}
}

func TestRegisterStudentApprovedImmediately(t *testing.T) {
	_, authSvc := newTestAuth(t)

	resp, err := authSvc.Register(dto.RegisterRequest{
		Email:    "kid@school.test",
		Username: "kid",
		Password: "Str0ng!pass",
		Role:     shared.RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsApproved {
		t.Error("expected student approved on registration")
	}
}

func TestRegisterTeacherWaitsForApproval(t *testing.T) {
	ds, authSvc := newTestAuth(t)

	resp, err := authSvc.Register(dto.RegisterRequest{
		Email:    "teach@school.test",
		Username: "teach",
		Password: "Str0ng!pass",
		Role:     shared.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsApproved {
		t.Error("expected teacher pending approval")
	}

	// Unapproved accounts cannot log in.
	_, err = authSvc.Login(dto.LoginRequest{
		EmailOrUsername: "teach",
		Password:        "Str0ng!pass",
	})
	if err == nil {
		t.Fatal("expected login rejected before approval")
	}

	if _, err := authSvc.AdminApproveUser(resp.UserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	login, err := authSvc.Login(dto.LoginRequest{
		EmailOrUsername: "teach",
		Password:        "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("expected login after approval, got %v", err)
	}
	if login.AccessToken == "" {
		t.Error("expected access token issued")
	}

	user, err := ds.GetUser(resp.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsApproved {
		t.Error("expected approval persisted")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, authSvc := newTestAuth(t)

	req := dto.RegisterRequest{
		Email:    "dup@school.test",
		Username: "dup1",
		Password: "Str0ng!pass",
		Role:     shared.RoleStudent,
	}
	if _, err := authSvc.Register(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.Username = "dup2"
	if _, err := authSvc.Register(req); err == nil {
		t.Fatal("expected duplicate email rejected")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, authSvc := newTestAuth(t)

	if _, err := authSvc.Register(dto.RegisterRequest{
		Email:    "who@school.test",
		Username: "who",
		Password: "Str0ng!pass",
		Role:     shared.RoleStudent,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := authSvc.Login(dto.LoginRequest{
		EmailOrUsername: "who",
		Password:        "wrong",
	})
	if err == nil {
		t.Fatal("expected login rejected")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	jwtSvc := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-secret",
	}

	pair, err := jwtSvc.GenerateTokenPair("user-1", shared.RoleStudent, "kid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := jwtSvc.VerifyJWTToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != shared.RoleStudent || claims.Username != "kid" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	jwtSvc := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-secret",
	}
	other := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "other-secret",
	}

	pair, err := other.GenerateTokenPair("user-1", shared.RoleStudent, "kid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := jwtSvc.VerifyJWTToken(pair.AccessToken); err == nil {
		t.Fatal("expected token signed with another key rejected")
	}
}
