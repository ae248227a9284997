package domain

// Capability is a named permission derived from a user's role flags. It is
// recomputed on every request and never persisted.
type Capability string

const (
	CapViewBotQueue      Capability = "ViewBotQueue"
	CapRpc               Capability = "Rpc"
	CapBotManagement     Capability = "BotManagement"
	CapCdnManagement     Capability = "CdnManagement"
	CapPartnerManagement Capability = "PartnerManagement"
)

// Capabilities derives the capability set for a user. Total: any combination
// of role flags yields a (possibly empty) set.
func Capabilities(u User) []Capability {
	var caps []Capability

	t := HighestTier(u)

	if t.Satisfies(TierStaff) {
		caps = append(caps, CapViewBotQueue)
	}
	if t.Satisfies(TierAdmin) {
		caps = append(caps, CapRpc, CapBotManagement, CapCdnManagement)
	}
	if t.Satisfies(TierHead) {
		caps = append(caps, CapPartnerManagement)
	}

	return caps
}

func HasCapability(caps []Capability, c Capability) bool {
	for _, have := range caps {
		if have == c {
			return true
		}
	}
	return false
}
