package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"panel/internal/domain"
	"panel/internal/dto"
	"panel/internal/store"
)

// constructors is the closed method set, in listing order. New variants are
// added here and nowhere else.
var constructors = []func() Method{
	func() Method { return &Claim{} },
	func() Method { return &Unclaim{} },
	func() Method { return &Approve{} },
	func() Method { return &Deny{} },
	func() Method { return &Unverify{} },
	func() Method { return &PremiumAdd{} },
	func() Method { return &PremiumRemove{} },
	func() Method { return &VoteReset{} },
	func() Method { return &VoteResetAll{} },
}

var byName = func() map[string]func() Method {
	m := make(map[string]func() Method, len(constructors))
	for _, ctor := range constructors {
		m[ctor().Name()] = ctor
	}
	return m
}()

// Decode turns a tagged-union call into a populated method value.
func Decode(call dto.RpcCall) (Method, error) {
	ctor, ok := byName[call.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrValidation, call.Name)
	}
	m := ctor()
	if len(call.Data) > 0 {
		if err := json.Unmarshal(call.Data, m); err != nil {
			return nil, fmt.Errorf("%w: bad payload for %s: %v", domain.ErrValidation, call.Name, err)
		}
	}
	return m, nil
}

// MethodInfo is the rendering metadata of one method.
type MethodInfo struct {
	Name             string       `json:"name"`
	Label            string       `json:"label"`
	Description      string       `json:"description"`
	NeedsTier        domain.Tier  `json:"needs_tier"`
	SupportedTargets []TargetType `json:"supported_target_types"`
	Fields           []Field      `json:"fields"`
}

func info(m Method) MethodInfo {
	return MethodInfo{
		Name:             m.Name(),
		Label:            m.Label(),
		Description:      m.Description(),
		NeedsTier:        m.NeedsTier(),
		SupportedTargets: m.SupportedTargets(),
		Fields:           m.Fields(),
	}
}

// Methods lists every method's metadata.
func Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(constructors))
	for _, ctor := range constructors {
		out = append(out, info(ctor()))
	}
	return out
}

// MethodsForTier lists only the methods a tier may execute. This is a UX
// filter; Execute re-checks the tier regardless.
func MethodsForTier(tier domain.Tier) []MethodInfo {
	var out []MethodInfo
	for _, ctor := range constructors {
		m := ctor()
		if tier.Satisfies(m.NeedsTier()) {
			out = append(out, info(m))
		}
	}
	return out
}

// Execute runs a method after re-validating the caller. The tier check here
// is the security boundary: it always reads the current role flags, so a
// demoted user cannot ride a stale method listing.
func Execute(ctx context.Context, h Handle, m Method) (Result, error) {
	user, err := h.Store.Users().Get(ctx, h.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return Result{}, domain.ErrForbidden
		}
		return Result{}, fmt.Errorf("load caller: %w", err)
	}

	if !domain.HighestTier(*user).Satisfies(m.NeedsTier()) {
		return Result{}, domain.ErrForbidden
	}

	supported := false
	for _, tt := range m.SupportedTargets() {
		if tt == h.Target {
			supported = true
			break
		}
	}
	if !supported {
		return Result{}, fmt.Errorf("%w: method %s does not support target type %s",
			domain.ErrValidation, m.Name(), h.Target)
	}

	return m.Handle(ctx, h)
}
