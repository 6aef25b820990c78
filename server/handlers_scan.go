package server

import (
	"net/http"

	"github.com/screenerhq/scan-server/scan"
)

type scanRequest struct {
	Regions       []string `json:"regions"`
	Services      []string `json:"services"`
	Frameworks    []string `json:"frameworks,omitempty"`
	AWSProfile    string   `json:"aws_profile,omitempty"`
	CredentialRef string   `json:"credential_ref,omitempty"`
}

// ScanCreateHandler launches a new scan job. Credentials come either from a
// named AWS profile or from a credential handle issued by the SSO flow.
func (s *Server) ScanCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Regions) == 0 || len(req.Services) == 0 {
			writeJSONError(w, "regions and services are required", http.StatusBadRequest)
			return
		}

		var creds scan.Credentials
		switch {
		case req.CredentialRef != "":
			roleCreds, err := s.sso.Credentials(req.CredentialRef)
			if err != nil {
				respondError(w, err)
				return
			}
			creds = scan.Credentials{
				AccessKeyID:     roleCreds.AccessKeyID,
				SecretAccessKey: roleCreds.SecretAccessKey,
				SessionToken:    roleCreds.SessionToken,
			}
		case req.AWSProfile != "":
			creds = scan.Credentials{Profile: req.AWSProfile}
		}

		job := s.scans.Create(scan.Params{
			Regions:    req.Regions,
			Services:   req.Services,
			Frameworks: req.Frameworks,
		}, creds)
		writeJSON(w, http.StatusOK, job)
	}
}

// ScanGetHandler returns a snapshot of one job.
func (s *Server) ScanGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := s.scans.Get(r.PathValue("jobID"))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// ScansListHandler returns every job in creation order.
func (s *Server) ScansListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"scans": s.scans.List()})
	}
}
