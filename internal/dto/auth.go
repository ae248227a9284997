package dto

import "time"

// MfaLogin reports the MFA state of a pending session. Info is set only
// when enrollment is still required; verified users get an empty payload.
type MfaLogin struct {
	Info *MfaLoginSecret `json:"info,omitempty"`
}

type MfaLoginSecret struct {
	QRCode string `json:"qr_code"`
	OtpURL string `json:"otp_url"`
	Secret string `json:"secret"`
}

type LoginURL struct {
	URL string `json:"url"`
}

type LoginToken struct {
	LoginToken string `json:"login_token"`
}

type Identity struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPerms struct {
	UserID    string `json:"user_id"`
	Staff     bool   `json:"staff"`
	Admin     bool   `json:"admin"`
	HeadAdmin bool   `json:"hadmin"`
	HeadDev   bool   `json:"iblhdev"`
	Owner     bool   `json:"owner"`
}

type SessionsCleared struct {
	Count int64 `json:"count"`
}
