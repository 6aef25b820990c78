package server

func (s *Server) initRoutes() {
	// Health & catalog
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteServices, ChainMiddleware(s.ServicesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRegions, ChainMiddleware(s.RegionsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFrameworks, ChainMiddleware(s.FrameworksHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAWSProfiles, ChainMiddleware(s.AWSProfilesHandler(), s.APIMiddleware()...))

	// SSO device flow
	s.RegisterRouteHandler("POST "+RouteSSOStart, ChainMiddleware(s.SSOStartHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSOPoll, ChainMiddleware(s.SSOPollHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSSOStatus, ChainMiddleware(s.SSOStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSOLogout, ChainMiddleware(s.SSOLogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSSOAccounts, ChainMiddleware(s.SSOAccountsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSSORoles, ChainMiddleware(s.SSORolesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSOCredentials, ChainMiddleware(s.SSOCredentialsHandler(), s.APIMiddleware()...))

	// Scan jobs
	s.RegisterRouteHandler("POST "+RouteScanCreate, ChainMiddleware(s.ScanCreateHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteScanGet, ChainMiddleware(s.ScanGetHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteScansList, ChainMiddleware(s.ScansListHandler(), s.APIMiddleware()...))

	// Reports
	s.RegisterRouteHandler("GET "+RouteReportsList, ChainMiddleware(s.ReportsListHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteReportFile, ChainMiddleware(s.ReportFileHandler(), s.APIMiddleware()...))
}
