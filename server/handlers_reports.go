package server

import (
	"net/http"

	"github.com/screenerhq/scan-server/reports"
)

// ReportsListHandler lists generated reports discovered on disk, newest
// first. Discovery covers reports produced by completed jobs as well as
// reports generated by earlier runs of the scanner.
func (s *Server) ReportsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.reports.List()
		if err != nil {
			respondError(w, err)
			return
		}
		if list == nil {
			list = []reports.Report{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reports": list})
	}
}

// ReportFileHandler serves files out of a single account's report directory.
func (s *Server) ReportFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := s.reports.Resolve(r.PathValue("accountID"), r.PathValue("file"))
		if err != nil {
			respondError(w, err)
			return
		}
		http.ServeFile(w, r, path)
	}
}
