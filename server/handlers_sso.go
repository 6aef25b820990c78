package server

import (
	"net/http"
	"time"

	"github.com/screenerhq/scan-server/sso"
)

type ssoStartRequest struct {
	StartURL string `json:"start_url"`
	Region   string `json:"region,omitempty"`
}

type ssoCredentialsRequest struct {
	AccountID string `json:"account_id"`
	RoleName  string `json:"role_name"`
}

type ssoStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	State         sso.State  `json:"state"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Failure       string     `json:"failure,omitempty"`
}

// SSOStartHandler begins a device-authorization login against an AWS SSO
// portal. The caller shows the returned user code and verification URI,
// then polls until the grant completes.
func (s *Server) SSOStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ssoStartRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		started, err := s.sso.StartLogin(r.Context(), req.StartURL, req.Region)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, started)
	}
}

// SSOPollHandler performs one token poll for the login in progress.
func (s *Server) SSOPollHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome, err := s.sso.Poll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// SSOStatusHandler reports the current session state.
func (s *Server) SSOStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ssoStatusResponse{State: s.sso.State()}

		if ok, expiresAt := s.sso.Authenticated(); ok {
			resp.Authenticated = true
			resp.ExpiresAt = &expiresAt
		}
		if resp.State == sso.StateFailed {
			_, message := s.sso.Failure()
			resp.Failure = message
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SSOLogoutHandler discards the session, role caches and issued credentials.
func (s *Server) SSOLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sso.Logout()
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

// SSOAccountsHandler lists the accounts visible to the authenticated session.
func (s *Server) SSOAccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := s.sso.Accounts(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
	}
}

// SSORolesHandler lists the roles assumable in one account.
func (s *Server) SSORolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := s.sso.Roles(r.Context(), r.PathValue("accountID"))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
	}
}

// SSOCredentialsHandler exchanges a selected account/role pair for temporary
// credentials and returns an opaque handle to them. The credentials
// themselves never leave the server.
func (s *Server) SSOCredentialsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ssoCredentialsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.AccountID == "" || req.RoleName == "" {
			writeJSONError(w, "account_id and role_name are required", http.StatusBadRequest)
			return
		}

		grant, err := s.sso.SelectRole(r.Context(), req.AccountID, req.RoleName)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, grant)
	}
}
