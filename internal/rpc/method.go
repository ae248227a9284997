package rpc

import (
	"context"
	"log/slog"

	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/store"
)

// TargetType is the kind of entity a method acts on.
type TargetType string

const (
	TargetBot    TargetType = "Bot"
	TargetServer TargetType = "Server"
)

func TargetTypes() []TargetType { return []TargetType{TargetBot, TargetServer} }

// Field describes one input of a method, for form rendering.
type Field struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"` // text, textarea, number, hour
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// Result is what a successful method execution hands back to the caller.
// An empty Content means no content.
type Result struct {
	Content string `json:"content,omitempty"`
}

// Handle bundles everything a method handler may touch. UserID is the
// caller; the executor has already verified their tier against the method.
type Handle struct {
	Store    *store.Store
	Notifier discord.Notifier
	UserID   string
	Target   TargetType
}

// Method is one variant of the closed action set. Payload fields live on
// the implementing struct and are filled by the registry decoder.
type Method interface {
	Name() string
	Label() string
	Description() string
	NeedsTier() domain.Tier
	SupportedTargets() []TargetType
	Fields() []Field
	Handle(ctx context.Context, h Handle) (Result, error)
}

// notify delivers a staff action message. Best-effort: a broken webhook
// must never roll back the action itself.
func notify(ctx context.Context, h Handle, msg string) {
	if err := h.Notifier.Send(ctx, msg); err != nil {
		slog.Warn("action notification failed", "error", err)
	}
}

func reasonField() Field {
	return Field{ID: "reason", Label: "Reason", Type: "textarea", Placeholder: "Why?", Required: true}
}
