package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"panel/internal/domain"
	"panel/internal/dto"
	"panel/internal/observability/metrics"
	"panel/internal/rpc"

	"gorm.io/datatypes"
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// requireCap resolves an active session and checks one derived capability.
func (s *Server) requireCap(r *http.Request, token string, cap domain.Capability) (*domain.User, error) {
	user, err := s.auth.SessionUser(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if !domain.HasCapability(domain.Capabilities(*user), cap) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// handlePanelQuery dispatches the tagged-union panel protocol. The body is
// decoded twice: once for the discriminator, once into the variant struct.
func (s *Server) handlePanelQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "body too large", http.StatusBadRequest)
		return
	}

	var env dto.QueryEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Method == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = s.dispatch(w, r, env.Method, body)
	metrics.PanelQueriesTotal.WithLabelValues(env.Method, result(err)).Inc()
	if err != nil {
		writeError(w, err)
	}
}

func decode[T any](body []byte) (T, error) {
	var q T
	if err := json.Unmarshal(body, &q); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return q, nil
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, method string, body []byte) error {
	ctx := r.Context()

	switch method {
	case "Hello":
		q, err := decode[dto.HelloQuery](body)
		if err != nil {
			return err
		}
		if q.Version != dto.ProtocolVersion {
			return fmt.Errorf("%w: unsupported protocol version %d", domain.ErrValidation, q.Version)
		}
		writeJSON(w, http.StatusOK, dto.InstanceConfig{
			Description: s.cfg.Description,
			Warnings:    s.cfg.Warnings,
		})

	case "GetLoginUrl":
		q, err := decode[dto.GetLoginURLQuery](body)
		if err != nil {
			return err
		}
		if q.Version != dto.ProtocolVersion {
			return fmt.Errorf("%w: unsupported protocol version %d", domain.ErrValidation, q.Version)
		}
		url, err := s.auth.LoginURL(q.RedirectURL)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.LoginURL{URL: url})

	case "Login":
		q, err := decode[dto.LoginQuery](body)
		if err != nil {
			return err
		}
		token, err := s.auth.Login(ctx, q.Code, q.RedirectURL)
		metrics.LoginsTotal.WithLabelValues(result(err)).Inc()
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.LoginToken{LoginToken: token})

	case "LoginMfaCheckStatus":
		q, err := decode[dto.MfaCheckStatusQuery](body)
		if err != nil {
			return err
		}
		status, err := s.auth.MfaCheckStatus(ctx, q.LoginToken)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, status)

	case "LoginActivateSession":
		q, err := decode[dto.ActivateSessionQuery](body)
		if err != nil {
			return err
		}
		if err := s.auth.ActivateSession(ctx, q.LoginToken, q.Otp); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "LoginResetMfa":
		q, err := decode[dto.ResetMfaQuery](body)
		if err != nil {
			return err
		}
		if err := s.auth.ResetMfa(ctx, q.LoginToken, q.Otp); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "Logout":
		q, err := decode[dto.LogoutQuery](body)
		if err != nil {
			return err
		}
		n, err := s.auth.Logout(ctx, q.LoginToken)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.SessionsCleared{Count: n})

	case "GetIdentity":
		q, err := decode[dto.GetIdentityQuery](body)
		if err != nil {
			return err
		}
		id, err := s.auth.Identity(ctx, q.LoginToken)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, id)

	case "GetUserDetails":
		q, err := decode[dto.GetUserDetailsQuery](body)
		if err != nil {
			return err
		}
		user, err := s.auth.UserDetails(ctx, q.UserID)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, user)

	case "GetUserPerms":
		q, err := decode[dto.GetUserPermsQuery](body)
		if err != nil {
			return err
		}
		perms, err := s.auth.UserPerms(ctx, q.UserID)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, perms)

	case "GetCapabilities":
		q, err := decode[dto.GetCapabilitiesQuery](body)
		if err != nil {
			return err
		}
		caps, err := s.auth.Capabilities(ctx, q.LoginToken)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, caps)

	case "GetCoreConstants":
		q, err := decode[dto.GetCoreConstantsQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.auth.CheckAuth(ctx, q.LoginToken); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.CoreConstants{
			FrontendURL: s.cfg.FrontendURL,
			CdnURL:      s.cfg.CdnURL,
			Servers: dto.CoreServers{
				Main:    s.cfg.MainServer,
				Staff:   s.cfg.StaffServer,
				Testing: s.cfg.TestingServer,
			},
		})

	case "BotQueue":
		q, err := decode[dto.BotQueueQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapViewBotQueue); err != nil {
			return err
		}
		bots, err := s.store.Bots().Queue(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, bots)

	case "SearchEntitys":
		q, err := decode[dto.SearchEntitysQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapBotManagement); err != nil {
			return err
		}
		res := dto.SearchResults{Bots: []domain.Bot{}, Servers: []struct{}{}}
		if rpc.TargetType(q.TargetType) == rpc.TargetBot {
			bots, err := s.store.Bots().Search(ctx, q.Query)
			if err != nil {
				return err
			}
			res.Bots = bots
		}
		writeJSON(w, http.StatusOK, res)

	case "ExecuteRpc":
		return s.executeRpc(w, r, body)

	case "GetRpcMethods":
		q, err := decode[dto.GetRpcMethodsQuery](body)
		if err != nil {
			return err
		}
		user, err := s.requireCap(r, q.LoginToken, domain.CapRpc)
		if err != nil {
			return err
		}
		if q.Filtered {
			writeJSON(w, http.StatusOK, rpc.MethodsForTier(domain.HighestTier(*user)))
		} else {
			writeJSON(w, http.StatusOK, rpc.Methods())
		}

	case "GetRpcTargetTypes":
		q, err := decode[dto.GetRpcTargetTypesQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapRpc); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, rpc.TargetTypes())

	case "UploadCdnFileChunk":
		q, err := decode[dto.UploadChunkQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapCdnManagement); err != nil {
			return err
		}
		id, err := s.assets.UploadChunk(q.Chunk)
		metrics.ChunkUploadsTotal.WithLabelValues(result(err)).Inc()
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.ChunkID{ChunkID: id})

	case "ListCdnScopes":
		q, err := decode[dto.ListScopesQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapCdnManagement); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, s.assets.Scopes())

	case "GetMainCdnScope":
		q, err := decode[dto.MainScopeQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapCdnManagement); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.Scope{Scope: s.assets.MainScope()})

	case "UpdateCdnAsset":
		return s.updateCdnAsset(w, r, body)

	case "GetPartnerList":
		q, err := decode[dto.GetPartnerListQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapPartnerManagement); err != nil {
			return err
		}
		partners, err := s.store.Partners().List(ctx)
		if err != nil {
			return err
		}
		types, err := s.store.Partners().ListTypes(ctx)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, dto.PartnerList{Partners: partners, PartnerTypes: types})

	case "AddPartner":
		q, err := decode[dto.AddPartnerQuery](body)
		if err != nil {
			return err
		}
		user, err := s.requireCap(r, q.LoginToken, domain.CapPartnerManagement)
		if err != nil {
			return err
		}
		if err := s.addPartner(r, user.UserID, q.Partner); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "DeletePartner":
		q, err := decode[dto.DeletePartnerQuery](body)
		if err != nil {
			return err
		}
		if _, err := s.requireCap(r, q.LoginToken, domain.CapPartnerManagement); err != nil {
			return err
		}
		exists, err := s.store.Partners().Exists(ctx, q.ID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: partner %s", domain.ErrNotFound, q.ID)
		}
		if err := s.store.Partners().Delete(ctx, q.ID); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		return fmt.Errorf("%w: unknown method %q", domain.ErrValidation, method)
	}

	return nil
}

func (s *Server) executeRpc(w http.ResponseWriter, r *http.Request, body []byte) error {
	q, err := decode[dto.ExecuteRpcQuery](body)
	if err != nil {
		return err
	}
	user, err := s.requireCap(r, q.LoginToken, domain.CapRpc)
	if err != nil {
		return err
	}

	target := rpc.TargetType(q.TargetType)
	if target != rpc.TargetBot && target != rpc.TargetServer {
		return fmt.Errorf("%w: unknown target type %q", domain.ErrValidation, q.TargetType)
	}

	m, err := rpc.Decode(q.Method)
	if err != nil {
		return err
	}

	res, err := rpc.Execute(r.Context(), rpc.Handle{
		Store:    s.store,
		Notifier: s.notifier,
		UserID:   user.UserID,
		Target:   target,
	}, m)
	metrics.RpcExecutionsTotal.WithLabelValues(m.Name(), result(err)).Inc()
	if err != nil {
		return err
	}

	if res.Content == "" {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	writeJSON(w, http.StatusOK, dto.RpcResponse{Content: res.Content})
	return nil
}

func (s *Server) updateCdnAsset(w http.ResponseWriter, r *http.Request, body []byte) error {
	q, err := decode[dto.UpdateAssetQuery](body)
	if err != nil {
		return err
	}
	if _, err := s.requireCap(r, q.LoginToken, domain.CapCdnManagement); err != nil {
		return err
	}

	switch q.Action.Action {
	case "list_path":
		items, err := s.assets.List(q.Scope, q.Path)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, items)

	case "read_file":
		data, err := s.assets.Read(q.Scope, q.Path, q.Name)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)

	case "create_folder":
		if err := s.assets.Mkdir(q.Scope, q.Path, q.Name); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "add_file":
		err := s.assets.AddFile(q.Scope, q.Path, q.Name, q.Action.Chunks, q.Action.SHA512, q.Action.Overwrite)
		if err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "copy_file":
		err := s.assets.Copy(q.Scope, q.Path, q.Name, q.Action.CopyTo, q.Action.DeleteOriginal)
		if err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	case "delete":
		if err := s.assets.Delete(q.Scope, q.Path, q.Name); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		return fmt.Errorf("%w: unknown asset action %q", domain.ErrValidation, q.Action.Action)
	}

	return nil
}

func (s *Server) addPartner(r *http.Request, creatorID string, p dto.CreatePartner) error {
	ctx := r.Context()

	if err := p.Validate(); err != nil {
		return err
	}

	typeOK, err := s.store.Partners().TypeExists(ctx, p.Type)
	if err != nil {
		return err
	}
	if !typeOK {
		return fmt.Errorf("%w: unknown partner type %q", domain.ErrValidation, p.Type)
	}

	exists, err := s.store.Partners().Exists(ctx, p.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: partner %s", domain.ErrAlreadyExists, p.ID)
	}

	links, err := json.Marshal(p.Links)
	if err != nil {
		return err
	}

	return s.store.Partners().Create(ctx, &domain.Partner{
		ID:        p.ID,
		Name:      p.Name,
		ImageType: p.ImageType,
		Short:     p.Short,
		Links:     datatypes.JSON(links),
		Type:      p.Type,
		UserID:    creatorID,
	})
}
