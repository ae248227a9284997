package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"panel/internal/cryptoutil"
	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/dto"
	"panel/internal/store"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// Options carries the static auth configuration.
type Options struct {
	// RedirectURLs is the allow-list for OAuth2 redirects. Anything else
	// is rejected before touching the provider.
	RedirectURLs []string

	// TOTP enrollment identity shown in authenticator apps.
	TotpIssuer  string
	TotpAccount string
}

type Service struct {
	store    *store.Store
	provider discord.IdentityProvider
	opts     Options
}

func New(st *store.Store, provider discord.IdentityProvider, opts Options) *Service {
	return &Service{store: st, provider: provider, opts: opts}
}

func (s *Service) allowedRedirect(url string) bool {
	for _, u := range s.opts.RedirectURLs {
		if u == url {
			return true
		}
	}
	return false
}

// LoginURL returns the provider authorization URL for an allow-listed
// redirect.
func (s *Service) LoginURL(redirectURL string) (string, error) {
	if !s.allowedRedirect(redirectURL) {
		return "", domain.ErrInvalidRedirect
	}
	return s.provider.AuthorizeURL(redirectURL), nil
}

// Login exchanges an OAuth2 code for a fresh pending session. Any previous
// sessions of the user are invalidated, so at most one login chain is live.
func (s *Service) Login(ctx context.Context, code, redirectURL string) (string, error) {
	if !s.allowedRedirect(redirectURL) {
		return "", domain.ErrInvalidRedirect
	}

	id, err := s.provider.Exchange(ctx, code, redirectURL)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	user, err := s.store.Users().Get(ctx, id.ID)
	if err != nil {
		if store.IsNotFound(err) {
			return "", domain.ErrNotStaff
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	if !user.Staff {
		return "", domain.ErrNotStaff
	}

	token := cryptoutil.RandomString(cryptoutil.RandomTokenLength())

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Sessions().DeleteAllForUser(ctx, user.UserID); err != nil {
			return err
		}

		mfa, err := tx.Mfa().GetByUser(ctx, user.UserID)
		if store.IsNotFound(err) {
			key, err := totp.Generate(totp.GenerateOpts{
				Issuer:      s.opts.TotpIssuer,
				AccountName: s.opts.TotpAccount,
			})
			if err != nil {
				return fmt.Errorf("generate totp secret: %w", err)
			}
			mfa = &domain.MfaRecord{UserID: user.UserID, Secret: key.Secret()}
			if err := tx.Mfa().Create(ctx, mfa); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		return tx.Sessions().Create(ctx, &domain.Session{
			MfaRef: mfa.Itag,
			UserID: user.UserID,
			Token:  token,
			State:  domain.SessionPending,
		})
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// CheckAuth resolves a token to its session, requiring the active state.
func (s *Service) CheckAuth(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.CheckAuthInsecure(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.SessionActive {
		return nil, domain.ErrInvalidToken
	}
	return sess, nil
}

// CheckAuthInsecure resolves a token regardless of state. Only the MFA
// endpoints may use it; everything else goes through CheckAuth.
func (s *Service) CheckAuthInsecure(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// MfaCheckStatus reports whether a pending session still needs TOTP
// enrollment. While unverified, the secret is rotated on every call so a
// half-finished enrollment never leaves a stale secret behind.
func (s *Service) MfaCheckStatus(ctx context.Context, token string) (*dto.MfaLogin, error) {
	sess, err := s.CheckAuthInsecure(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.SessionPending {
		return nil, domain.ErrSessionAlreadyActive
	}

	mfa, err := s.store.Mfa().GetByUser(ctx, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrMfaNotSetup
		}
		return nil, fmt.Errorf("load mfa record: %w", err)
	}

	if mfa.Verified {
		return &dto.MfaLogin{}, nil
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.opts.TotpIssuer,
		AccountName: s.opts.TotpAccount,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}
	if err := s.store.Mfa().UpdateSecret(ctx, sess.UserID, key.Secret()); err != nil {
		return nil, fmt.Errorf("rotate totp secret: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}

	return &dto.MfaLogin{
		Info: &dto.MfaLoginSecret{
			QRCode: base64.StdEncoding.EncodeToString(png),
			OtpURL: key.URL(),
			Secret: key.Secret(),
		},
	}, nil
}

// ActivateSession verifies a TOTP code against the stored secret and flips
// the session to active. Zero clock skew: only the current 30s step counts.
func (s *Service) ActivateSession(ctx context.Context, token, code string) error {
	sess, err := s.CheckAuthInsecure(ctx, token)
	if err != nil {
		return err
	}
	if sess.State != domain.SessionPending {
		return domain.ErrSessionAlreadyActive
	}

	mfa, err := s.store.Mfa().GetByUser(ctx, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return domain.ErrMfaNotSetup
		}
		return fmt.Errorf("load mfa record: %w", err)
	}

	if !validateCode(code, mfa.Secret) {
		return domain.ErrMfaInvalidCode
	}

	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Sessions().Activate(ctx, token); err != nil {
			return err
		}
		return tx.Mfa().SetVerified(ctx, sess.UserID, true)
	})
}

// ResetMfa drops the user's MFA enrollment and all sessions, forcing a full
// re-login plus re-enrollment. Requires an active session and a valid code.
func (s *Service) ResetMfa(ctx context.Context, token, code string) error {
	sess, err := s.CheckAuth(ctx, token)
	if err != nil {
		return err
	}

	mfa, err := s.store.Mfa().GetByUser(ctx, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return domain.ErrMfaNotSetup
		}
		return fmt.Errorf("load mfa record: %w", err)
	}

	if !validateCode(code, mfa.Secret) {
		return domain.ErrMfaInvalidCode
	}

	return s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Mfa().SetVerified(ctx, sess.UserID, false); err != nil {
			return err
		}
		return tx.Sessions().DeleteAllForUser(ctx, sess.UserID)
	})
}

// Logout deletes the session for a token. Idempotent; returns the number of
// sessions removed.
func (s *Service) Logout(ctx context.Context, token string) (int64, error) {
	return s.store.Sessions().DeleteByToken(ctx, token)
}

// Identity returns the user id and creation time behind an active session.
func (s *Service) Identity(ctx context.Context, token string) (*dto.Identity, error) {
	sess, err := s.CheckAuth(ctx, token)
	if err != nil {
		return nil, err
	}
	return &dto.Identity{UserID: sess.UserID, CreatedAt: sess.CreatedAt}, nil
}

// Capabilities derives the capability set of the user behind an active
// session, from the current role flags.
func (s *Service) Capabilities(ctx context.Context, token string) ([]domain.Capability, error) {
	user, err := s.SessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return domain.Capabilities(*user), nil
}

// SessionUser loads the user behind an active session.
func (s *Service) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	sess, err := s.CheckAuth(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().Get(ctx, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UserPerms returns the raw role flags of any user.
func (s *Service) UserPerms(ctx context.Context, userID string) (*dto.UserPerms, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &dto.UserPerms{
		UserID:    user.UserID,
		Staff:     user.Staff,
		Admin:     user.Admin,
		HeadAdmin: user.HeadAdmin,
		HeadDev:   user.HeadDev,
		Owner:     user.Owner,
	}, nil
}

// UserDetails returns the public profile of any user.
func (s *Service) UserDetails(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func validateCode(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
