package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"panel/internal/domain"
	"panel/internal/dto"
	"panel/internal/observability/metrics"
	"panel/internal/rpc"
	"panel/internal/store"
)

// staffActionBody is the shared body of the staff REST endpoints. These use
// per-user API tokens, a separate credential system from panel sessions.
type staffActionBody struct {
	StaffID string `json:"staff_id"`
	BotID   string `json:"bot_id"`
	Reason  string `json:"reason"`
}

func apiDone(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, dto.APIResponse{Done: true})
}

func apiError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, dto.APIResponse{Done: false, Reason: &reason})
}

// authorizeStaff authenticates a REST caller by API token and role flags,
// then applies the per-user burst limit.
func (s *Server) authorizeStaff(r *http.Request, body staffActionBody, needHead bool) (*domain.User, error) {
	if body.StaffID == "" {
		return nil, domain.ErrValidation
	}

	user, err := s.store.Users().Get(r.Context(), body.StaffID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	token := r.Header.Get("Authorization")
	if user.APIToken == "" || token == "" ||
		subtle.ConstantTimeCompare([]byte(user.APIToken), []byte(token)) != 1 {
		return nil, domain.ErrInvalidToken
	}

	if needHead {
		if !user.Head() {
			return nil, domain.ErrForbidden
		}
	} else if !user.Staff {
		return nil, domain.ErrForbidden
	}

	if !s.restRate.Allow(user.UserID) {
		return nil, domain.ErrRateLimited
	}
	return user, nil
}

func (s *Server) staffAction(w http.ResponseWriter, r *http.Request, needHead bool, method func(body staffActionBody) rpc.Method) {
	var body staffActionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, http.StatusBadRequest, "bad request body")
		return
	}

	user, err := s.authorizeStaff(r, body, needHead)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			apiError(w, http.StatusBadRequest, "staff_id is required")
		case errors.Is(err, domain.ErrInvalidToken):
			apiError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrForbidden):
			apiError(w, http.StatusForbidden, "missing permissions")
		case errors.Is(err, domain.ErrRateLimited):
			apiError(w, http.StatusTooManyRequests, "rate limited")
		default:
			apiError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	m := method(body)
	slog.Info("staff rest action",
		"action", m.Name(),
		"staff_id", user.UserID,
		"bot_id", body.BotID,
		"ip", s.clientIP(r),
	)

	res, err := rpc.Execute(r.Context(), rpc.Handle{
		Store:    s.store,
		Notifier: s.notifier,
		UserID:   user.UserID,
		Target:   rpc.TargetBot,
	}, m)
	metrics.RpcExecutionsTotal.WithLabelValues(m.Name(), result(err)).Inc()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			apiError(w, http.StatusForbidden, "missing permissions")
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			apiError(w, http.StatusBadRequest, err.Error())
		default:
			apiError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if res.Content != "" {
		writeJSON(w, http.StatusOK, dto.APIResponse{Done: true, Context: &res.Content})
		return
	}
	apiDone(w)
}

func (s *Server) handleBotApprove(w http.ResponseWriter, r *http.Request) {
	s.staffAction(w, r, false, func(b staffActionBody) rpc.Method {
		return &rpc.Approve{BotID: b.BotID, Reason: b.Reason}
	})
}

func (s *Server) handleBotDeny(w http.ResponseWriter, r *http.Request) {
	s.staffAction(w, r, false, func(b staffActionBody) rpc.Method {
		return &rpc.Deny{BotID: b.BotID, Reason: b.Reason}
	})
}

func (s *Server) handleBotUnverify(w http.ResponseWriter, r *http.Request) {
	s.staffAction(w, r, true, func(b staffActionBody) rpc.Method {
		return &rpc.Unverify{BotID: b.BotID, Reason: b.Reason}
	})
}

func (s *Server) handleVotesReset(w http.ResponseWriter, r *http.Request) {
	s.staffAction(w, r, true, func(b staffActionBody) rpc.Method {
		return &rpc.VoteReset{TargetID: b.BotID, Reason: b.Reason}
	})
}

func (s *Server) handleVotesResetAll(w http.ResponseWriter, r *http.Request) {
	s.staffAction(w, r, true, func(b staffActionBody) rpc.Method {
		return &rpc.VoteResetAll{Reason: b.Reason}
	})
}
