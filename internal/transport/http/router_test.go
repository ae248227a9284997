package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"panel/internal/auth"
	"panel/internal/cache"
	"panel/internal/cdn"
	"panel/internal/config"
	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/observability/metrics"
	"panel/internal/store"
	transport "panel/internal/transport/http"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// The metric vecs are curried once per process.
	metrics.MustRegister("panel-test")
	os.Exit(m.Run())
}

func setupServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.MfaRecord{}, &domain.Bot{}, &domain.Partner{}, &domain.PartnerType{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	users := []domain.User{
		{UserID: "staff", Username: "staff", Staff: true, APIToken: "staff-token"},
		{UserID: "head", Username: "head", Staff: true, Admin: true, HeadDev: true, APIToken: "head-token"},
	}
	bots := []domain.Bot{
		{BotID: "b1", Type: domain.BotTypeClaimed, ClaimedBy: ptr("staff"), Invite: "https://example.com/add/b1"},
		{BotID: "b2", Type: domain.BotTypeApproved, Votes: 12},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if err := db.Create(&bots).Error; err != nil {
		t.Fatalf("seed bots: %v", err)
	}

	st := store.New(db)
	cfg := config.Config{
		Description: "test instance",
		Warnings:    []string{},
		FrontendURL: "http://localhost:3000",
		RateWindow:  time.Minute,
		RateMax:     100,
		TrustProxy:  false,
	}
	authSvc := auth.New(st, nil, auth.Options{TotpIssuer: "Test", TotpAccount: "staff"})
	assets := cdn.New(cache.NewChunkCache(time.Minute), map[string]config.CdnScope{"main": {Path: t.TempDir()}}, "main")

	srv := transport.NewServer(cfg, st, authSvc, assets, discord.NopNotifier{})
	return srv.Routes(), st
}

func ptr(s string) *string { return &s }

func postJSON(t *testing.T, h http.Handler, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func seedActiveSession(t *testing.T, st *store.Store, userID, token string) {
	t.Helper()
	err := st.DB.Create(&domain.Session{
		Itag:   uuid.New(),
		MfaRef: uuid.New(),
		UserID: userID,
		Token:  token,
		State:  domain.SessionActive,
	}).Error
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestReadQueriesEnforceCapabilities(t *testing.T) {
	h, st := setupServer(t)
	seedActiveSession(t, st, "staff", "staff-session")
	seedActiveSession(t, st, "head", "head-session")

	// "staff" holds only the staff flag, so it derives ViewBotQueue and
	// nothing else; "head" derives the full admin and head sets.
	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"core constants without token", map[string]any{"method": "GetCoreConstants"}, http.StatusUnauthorized},
		{"target types without token", map[string]any{"method": "GetRpcTargetTypes"}, http.StatusUnauthorized},
		{"rpc methods as plain staff", map[string]any{"method": "GetRpcMethods", "login_token": "staff-session"}, http.StatusForbidden},
		{"target types as plain staff", map[string]any{"method": "GetRpcTargetTypes", "login_token": "staff-session"}, http.StatusForbidden},
		{"partner list as plain staff", map[string]any{"method": "GetPartnerList", "login_token": "staff-session"}, http.StatusForbidden},
		{"search as plain staff", map[string]any{"method": "SearchEntitys", "login_token": "staff-session", "target_type": "Bot", "query": "b2"}, http.StatusForbidden},
		{"bot queue as plain staff", map[string]any{"method": "BotQueue", "login_token": "staff-session"}, http.StatusOK},
		{"core constants with session", map[string]any{"method": "GetCoreConstants", "login_token": "staff-session"}, http.StatusOK},
		{"rpc methods as head", map[string]any{"method": "GetRpcMethods", "login_token": "head-session"}, http.StatusOK},
		{"target types as head", map[string]any{"method": "GetRpcTargetTypes", "login_token": "head-session"}, http.StatusOK},
		{"partner list as head", map[string]any{"method": "GetPartnerList", "login_token": "head-session"}, http.StatusOK},
		{"search as head", map[string]any{"method": "SearchEntitys", "login_token": "head-session", "target_type": "Bot", "query": "b2"}, http.StatusOK},
	}

	for _, tc := range cases {
		w := postJSON(t, h, "/", "", tc.body)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d: %s", tc.name, tc.want, w.Code, w.Body)
		}
	}
}

func TestHelloChecksProtocolVersion(t *testing.T) {
	h, _ := setupServer(t)

	w := postJSON(t, h, "/", "", map[string]any{"method": "Hello", "version": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("old protocol version: expected 400, got %d", w.Code)
	}

	w = postJSON(t, h, "/", "", map[string]any{"method": "Hello", "version": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var cfg struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil || cfg.Description != "test instance" {
		t.Fatalf("unexpected instance config: %s (err=%v)", w.Body, err)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	h, _ := setupServer(t)
	w := postJSON(t, h, "/", "", map[string]any{"method": "DropTables"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPanelQueriesNeedActiveSession(t *testing.T) {
	h, _ := setupServer(t)
	w := postJSON(t, h, "/", "", map[string]any{"method": "BotQueue", "login_token": "bogus"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStaffRestAuthFailures(t *testing.T) {
	h, _ := setupServer(t)
	body := map[string]string{"staff_id": "staff", "bot_id": "b1", "reason": "ok"}

	w := postJSON(t, h, "/panel/bots/approve", "wrong-token", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: expected 401, got %d: %s", w.Code, w.Body)
	}

	w = postJSON(t, h, "/panel/bots/approve", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", w.Code)
	}

	// votes-reset needs a head role, plain staff is rejected.
	w = postJSON(t, h, "/panel/bots/votes-reset", "staff-token", map[string]string{"staff_id": "staff", "bot_id": "b2"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("staff on head endpoint: expected 403, got %d: %s", w.Code, w.Body)
	}
}

func TestStaffRestApproveReturnsInvite(t *testing.T) {
	h, st := setupServer(t)

	w := postJSON(t, h, "/panel/bots/approve", "staff-token",
		map[string]string{"staff_id": "staff", "bot_id": "b1", "reason": "works fine"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	var res struct {
		Done    bool    `json:"done"`
		Context *string `json:"ctx"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Done || res.Context == nil || *res.Context != "https://example.com/add/b1" {
		t.Fatalf("expected done with invite context, got %s", w.Body)
	}

	var bot domain.Bot
	if err := st.DB.First(&bot, "bot_id = ?", "b1").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if bot.Type != domain.BotTypeApproved {
		t.Fatalf("expected approved, got %s", bot.Type)
	}
}

func TestStaffRestVotesResetAll(t *testing.T) {
	h, st := setupServer(t)

	w := postJSON(t, h, "/panel/bots/votes-reset/all", "head-token",
		map[string]string{"staff_id": "head", "reason": "new season"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	var bot domain.Bot
	if err := st.DB.First(&bot, "bot_id = ?", "b2").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if bot.Votes != 0 {
		t.Fatalf("expected votes reset, got %d", bot.Votes)
	}
}
