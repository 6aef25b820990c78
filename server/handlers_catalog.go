package server

import (
	"net/http"

	"github.com/screenerhq/scan-server/catalog"
)

const apiVersion = "1.0.0"

// HealthHandler reports service liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": apiVersion,
		})
	}
}

// ServicesHandler lists the AWS services available for scanning
func (s *Server) ServicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"services": catalog.Services()})
	}
}

// RegionsHandler lists the selectable AWS regions
func (s *Server) RegionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"regions": catalog.Regions()})
	}
}

// FrameworksHandler lists the supported compliance frameworks
func (s *Server) FrameworksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"frameworks": catalog.Frameworks()})
	}
}

// AWSProfilesHandler lists AWS named profiles from the shared credentials file
func (s *Server) AWSProfilesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"profiles": catalog.Profiles()})
	}
}
