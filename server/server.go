package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/screenerhq/scan-server/internal/config"
	"github.com/screenerhq/scan-server/reports"
	"github.com/screenerhq/scan-server/scan"
	"github.com/screenerhq/scan-server/sso"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	sso     *sso.Manager
	scans   *scan.Registry
	reports *reports.Store
}

func New(config config.Config, ssoManager *sso.Manager, registry *scan.Registry, reportStore *reports.Store) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		sso:     ssoManager,
		scans:   registry,
		reports: reportStore,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
