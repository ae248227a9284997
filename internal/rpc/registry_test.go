package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"panel/internal/domain"
	"panel/internal/dto"
	"panel/internal/rpc"
	"panel/internal/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Send(_ context.Context, msg string) error {
	n.messages = append(n.messages, msg)
	return nil
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Bot{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	users := []domain.User{
		{UserID: "staff", Username: "staff", Staff: true},
		{UserID: "head", Username: "head", Staff: true, Admin: true, HeadAdmin: true},
	}
	bots := []domain.Bot{
		{BotID: "b1", ClientID: "b1", Type: domain.BotTypePending, Invite: "https://example.com/invite/b1", Votes: 10},
		{BotID: "b2", ClientID: "b2", Type: domain.BotTypeApproved, Votes: 25},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if err := db.Create(&bots).Error; err != nil {
		t.Fatalf("seed bots: %v", err)
	}

	return store.New(db)
}

func call(name string, payload any) dto.RpcCall {
	data, _ := json.Marshal(payload)
	return dto.RpcCall{Name: name, Data: data}
}

func TestDecodeUnknownMethod(t *testing.T) {
	_, err := rpc.Decode(dto.RpcCall{Name: "Certify"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDecodePopulatesPayload(t *testing.T) {
	m, err := rpc.Decode(call("Approve", map[string]string{"bot_id": "b1", "reason": "looks good"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, ok := m.(*rpc.Approve)
	if !ok {
		t.Fatalf("expected *rpc.Approve, got %T", m)
	}
	if a.BotID != "b1" || a.Reason != "looks good" {
		t.Fatalf("payload not decoded: %+v", a)
	}
}

func TestExecuteEnforcesTier(t *testing.T) {
	st := setupStore(t)
	h := rpc.Handle{Store: st, Notifier: &recordingNotifier{}, UserID: "staff", Target: rpc.TargetBot}

	m, err := rpc.Decode(call("VoteResetAll", map[string]string{"reason": "season reset"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := rpc.Execute(context.Background(), h, m); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("staff caller on head method: expected ErrForbidden, got %v", err)
	}

	var bot domain.Bot
	if err := st.DB.First(&bot, "bot_id = ?", "b2").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if bot.Votes != 25 {
		t.Fatalf("forbidden call must not mutate state, votes=%d", bot.Votes)
	}
}

func TestExecuteRejectsUnknownCaller(t *testing.T) {
	st := setupStore(t)
	h := rpc.Handle{Store: st, Notifier: &recordingNotifier{}, UserID: "ghost", Target: rpc.TargetBot}

	m, _ := rpc.Decode(call("Claim", map[string]string{"bot_id": "b1"}))
	if _, err := rpc.Execute(context.Background(), h, m); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestExecuteRejectsUnsupportedTarget(t *testing.T) {
	st := setupStore(t)
	h := rpc.Handle{Store: st, Notifier: &recordingNotifier{}, UserID: "staff", Target: rpc.TargetServer}

	m, _ := rpc.Decode(call("Claim", map[string]string{"bot_id": "b1"}))
	if _, err := rpc.Execute(context.Background(), h, m); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for server target, got %v", err)
	}
}

func TestMethodsForTierHidesHigherMethods(t *testing.T) {
	listed := map[string]bool{}
	for _, m := range rpc.MethodsForTier(domain.TierStaff) {
		listed[m.Name] = true
	}
	for _, want := range []string{"Claim", "Unclaim", "Approve", "Deny"} {
		if !listed[want] {
			t.Fatalf("staff listing should include %s, got %v", want, listed)
		}
	}
	for _, hidden := range []string{"Unverify", "PremiumAdd", "VoteReset", "VoteResetAll"} {
		if listed[hidden] {
			t.Fatalf("staff listing should hide %s", hidden)
		}
	}

	if got, want := len(rpc.MethodsForTier(domain.TierOwner)), len(rpc.Methods()); got != want {
		t.Fatalf("owner should see all %d methods, got %d", want, got)
	}
}

func TestClaimApproveFlow(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	notifier := &recordingNotifier{}
	h := rpc.Handle{Store: st, Notifier: notifier, UserID: "staff", Target: rpc.TargetBot}

	m, _ := rpc.Decode(call("Claim", map[string]string{"bot_id": "b1"}))
	if _, err := rpc.Execute(ctx, h, m); err != nil {
		t.Fatalf("claim: %v", err)
	}

	var bot domain.Bot
	if err := st.DB.First(&bot, "bot_id = ?", "b1").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if bot.Type != domain.BotTypeClaimed || bot.ClaimedBy == nil || *bot.ClaimedBy != "staff" {
		t.Fatalf("expected claimed by staff, got %+v", bot)
	}

	m, _ = rpc.Decode(call("Approve", map[string]string{"bot_id": "b1", "reason": "works"}))
	res, err := rpc.Execute(ctx, h, m)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Content != "https://example.com/invite/b1" {
		t.Fatalf("approve should return the invite, got %q", res.Content)
	}

	if err := st.DB.First(&bot, "bot_id = ?", "b1").Error; err != nil {
		t.Fatalf("reload bot: %v", err)
	}
	if bot.Type != domain.BotTypeApproved || bot.ClaimedBy != nil {
		t.Fatalf("expected approved and unclaimed, got %+v", bot)
	}

	if len(notifier.messages) != 2 {
		t.Fatalf("expected 2 notifications, got %v", notifier.messages)
	}
}

func TestApproveRequiresClaim(t *testing.T) {
	st := setupStore(t)
	h := rpc.Handle{Store: st, Notifier: &recordingNotifier{}, UserID: "staff", Target: rpc.TargetBot}

	m, _ := rpc.Decode(call("Approve", map[string]string{"bot_id": "b1", "reason": "nope"}))
	if _, err := rpc.Execute(context.Background(), h, m); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("approving an unclaimed bot: expected ErrValidation, got %v", err)
	}
}

func TestVoteResetHead(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	h := rpc.Handle{Store: st, Notifier: &recordingNotifier{}, UserID: "head", Target: rpc.TargetBot}

	m, _ := rpc.Decode(call("VoteReset", map[string]string{"target_id": "b2", "reason": "fraud"}))
	if _, err := rpc.Execute(ctx, h, m); err != nil {
		t.Fatalf("vote reset: %v", err)
	}

	var bot domain.Bot
	if err := st.DB.First(&bot, "bot_id = ?", "b2").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if bot.Votes != 0 {
		t.Fatalf("expected votes reset, got %d", bot.Votes)
	}
}
