package dto

// ProtocolVersion must be sent by clients in Hello and GetLoginUrl.
const ProtocolVersion = 2

// QueryEnvelope carries only the discriminator; the handler decodes the
// body a second time into the matching variant struct.
type QueryEnvelope struct {
	Method string `json:"method"`
}

type HelloQuery struct {
	Version int `json:"version"`
}

type GetLoginURLQuery struct {
	Version     int    `json:"version"`
	RedirectURL string `json:"redirect_url"`
}

type LoginQuery struct {
	Code        string `json:"code"`
	RedirectURL string `json:"redirect_url"`
}

type MfaCheckStatusQuery struct {
	LoginToken string `json:"login_token"`
}

type ActivateSessionQuery struct {
	LoginToken string `json:"login_token"`
	Otp        string `json:"otp"`
}

type ResetMfaQuery struct {
	LoginToken string `json:"login_token"`
	Otp        string `json:"otp"`
}

type LogoutQuery struct {
	LoginToken string `json:"login_token"`
}

type GetIdentityQuery struct {
	LoginToken string `json:"login_token"`
}

type GetUserDetailsQuery struct {
	UserID string `json:"user_id"`
}

type GetUserPermsQuery struct {
	UserID string `json:"user_id"`
}

type GetCapabilitiesQuery struct {
	LoginToken string `json:"login_token"`
}

type GetCoreConstantsQuery struct {
	LoginToken string `json:"login_token"`
}

type BotQueueQuery struct {
	LoginToken string `json:"login_token"`
}

type SearchEntitysQuery struct {
	LoginToken string `json:"login_token"`
	TargetType string `json:"target_type"`
	Query      string `json:"query"`
}
