package domain

import (
	"encoding/json"
	"fmt"
)

// Tier is an ordered permission level. Higher tiers imply access to
// everything a lower tier can reach.
type Tier int

const (
	TierNone Tier = iota
	TierStaff
	TierAdmin
	TierHead
	TierOwner
)

func (t Tier) Satisfies(required Tier) bool { return t >= required }

func (t Tier) String() string {
	switch t {
	case TierStaff:
		return "Staff"
	case TierAdmin:
		return "Admin"
	case TierHead:
		return "Head"
	case TierOwner:
		return "Owner"
	default:
		return "None"
	}
}

func (t Tier) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "Staff":
		*t = TierStaff
	case "Admin":
		*t = TierAdmin
	case "Head":
		*t = TierHead
	case "Owner":
		*t = TierOwner
	case "None":
		*t = TierNone
	default:
		return fmt.Errorf("unknown tier %q", s)
	}
	return nil
}

// HighestTier returns the highest tier a user's role flags grant, or
// TierNone when the user is not staff at all.
func HighestTier(u User) Tier {
	switch {
	case u.Owner:
		return TierOwner
	case u.Head():
		return TierHead
	case u.Admin:
		return TierAdmin
	case u.Staff:
		return TierStaff
	default:
		return TierNone
	}
}
