package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"panel/internal/auth"
	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/store"

	"github.com/pquerna/otp/totp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeProvider struct {
	// identity returned for any code
	identity discord.Identity
}

func (f *fakeProvider) AuthorizeURL(redirectURL string) string {
	return "https://discord.com/oauth2/authorize?redirect_uri=" + redirectURL
}

func (f *fakeProvider) Exchange(_ context.Context, code, _ string) (*discord.Identity, error) {
	if code == "" {
		return nil, errors.New("empty code")
	}
	id := f.identity
	return &id, nil
}

func setupService(t *testing.T, user *domain.User) (*auth.Service, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.MfaRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	if user != nil {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	st := store.New(db)
	provider := &fakeProvider{identity: discord.Identity{ID: "u1", Username: "staffer"}}
	svc := auth.New(st, provider, auth.Options{
		RedirectURLs: []string{"https://panel.example.com/callback"},
		TotpIssuer:   "Test Panel",
		TotpAccount:  "staff",
	})
	return svc, st
}

const redirect = "https://panel.example.com/callback"

func staffUser() *domain.User {
	return &domain.User{UserID: "u1", Username: "staffer", Staff: true}
}

// login plus full MFA activation, returning the active token.
func activate(t *testing.T, svc *auth.Service) string {
	t.Helper()
	ctx := context.Background()

	token, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	status, err := svc.MfaCheckStatus(ctx, token)
	if err != nil {
		t.Fatalf("mfa status: %v", err)
	}
	if status.Info == nil {
		t.Fatal("expected enrollment info for unverified user")
	}

	code, err := totp.GenerateCode(status.Info.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.ActivateSession(ctx, token, code); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return token
}

func TestLoginURLRejectsUnknownRedirect(t *testing.T) {
	svc, _ := setupService(t, staffUser())

	if _, err := svc.LoginURL("https://evil.example.com"); !errors.Is(err, domain.ErrInvalidRedirect) {
		t.Fatalf("expected ErrInvalidRedirect, got %v", err)
	}
	if _, err := svc.LoginURL(redirect); err != nil {
		t.Fatalf("allow-listed redirect should pass: %v", err)
	}
}

func TestLoginRejectsNonStaff(t *testing.T) {
	ctx := context.Background()

	svc, st := setupService(t, nil)
	if _, err := svc.Login(ctx, "code", redirect); !errors.Is(err, domain.ErrNotStaff) {
		t.Fatalf("unknown user: expected ErrNotStaff, got %v", err)
	}

	if err := st.DB.Create(&domain.User{UserID: "u1", Username: "civilian"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.Login(ctx, "code", redirect); !errors.Is(err, domain.ErrNotStaff) {
		t.Fatalf("non-staff user: expected ErrNotStaff, got %v", err)
	}

	n, err := st.Sessions().CountForUser(ctx, "u1")
	if err != nil || n != 0 {
		t.Fatalf("expected no sessions, got %d (err=%v)", n, err)
	}
}

func TestLoginSupersedesOldSessions(t *testing.T) {
	ctx := context.Background()
	svc, st := setupService(t, staffUser())

	first, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first == second {
		t.Fatal("tokens should differ")
	}

	n, err := st.Sessions().CountForUser(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one live session, got %d (err=%v)", n, err)
	}
	if _, err := svc.CheckAuthInsecure(ctx, first); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("superseded token should be invalid, got %v", err)
	}
}

func TestPendingSessionIsNotAuthenticated(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, staffUser())

	token, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.CheckAuth(ctx, token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("pending session should fail CheckAuth, got %v", err)
	}
	if _, err := svc.CheckAuthInsecure(ctx, token); err != nil {
		t.Fatalf("pending session should pass insecure check: %v", err)
	}
}

func TestActivateSessionWrongCodeIsRetryable(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, staffUser())

	token, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	status, err := svc.MfaCheckStatus(ctx, token)
	if err != nil {
		t.Fatalf("mfa status: %v", err)
	}

	if err := svc.ActivateSession(ctx, token, "000000"); !errors.Is(err, domain.ErrMfaInvalidCode) {
		t.Fatalf("expected ErrMfaInvalidCode, got %v", err)
	}

	// The failed attempt must not burn the session or the secret.
	code, err := totp.GenerateCode(status.Info.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.ActivateSession(ctx, token, code); err != nil {
		t.Fatalf("activate after failed attempt: %v", err)
	}
	if _, err := svc.CheckAuth(ctx, token); err != nil {
		t.Fatalf("activated session should authenticate: %v", err)
	}
}

func TestMfaStatusAfterActivation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, staffUser())
	token := activate(t, svc)

	if _, err := svc.MfaCheckStatus(ctx, token); !errors.Is(err, domain.ErrSessionAlreadyActive) {
		t.Fatalf("active session: expected ErrSessionAlreadyActive, got %v", err)
	}
	if err := svc.ActivateSession(ctx, token, "000000"); !errors.Is(err, domain.ErrSessionAlreadyActive) {
		t.Fatalf("double activation: expected ErrSessionAlreadyActive, got %v", err)
	}
}

func TestVerifiedUserSkipsEnrollment(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, staffUser())
	activate(t, svc)

	// A later login by the same user must not show the secret again.
	token, err := svc.Login(ctx, "code", redirect)
	if err != nil {
		t.Fatalf("re-login: %v", err)
	}
	status, err := svc.MfaCheckStatus(ctx, token)
	if err != nil {
		t.Fatalf("mfa status: %v", err)
	}
	if status.Info != nil {
		t.Fatal("verified user should not receive enrollment info")
	}
}

func TestResetMfaWipesSessionsAndEnrollment(t *testing.T) {
	ctx := context.Background()
	svc, st := setupService(t, staffUser())
	token := activate(t, svc)

	mfa, err := st.Mfa().GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("load mfa: %v", err)
	}
	code, err := totp.GenerateCode(mfa.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	if err := svc.ResetMfa(ctx, token, code); err != nil {
		t.Fatalf("reset mfa: %v", err)
	}

	n, err := st.Sessions().CountForUser(ctx, "u1")
	if err != nil || n != 0 {
		t.Fatalf("expected all sessions gone, got %d (err=%v)", n, err)
	}
	mfa, err = st.Mfa().GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("reload mfa: %v", err)
	}
	if mfa.Verified {
		t.Fatal("enrollment should be unverified after reset")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, staffUser())
	token := activate(t, svc)

	n, err := svc.Logout(ctx, token)
	if err != nil || n != 1 {
		t.Fatalf("expected one session removed, got %d (err=%v)", n, err)
	}
	n, err = svc.Logout(ctx, token)
	if err != nil || n != 0 {
		t.Fatalf("repeat logout should remove nothing, got %d (err=%v)", n, err)
	}
}

func TestCapabilitiesRequireActiveSession(t *testing.T) {
	ctx := context.Background()
	u := staffUser()
	u.Admin = true
	svc, _ := setupService(t, u)
	token := activate(t, svc)

	caps, err := svc.Capabilities(ctx, token)
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	if !domain.HasCapability(caps, domain.CapRpc) {
		t.Fatalf("admin should hold Rpc, got %v", caps)
	}

	if _, err := svc.Capabilities(ctx, "bogus"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
