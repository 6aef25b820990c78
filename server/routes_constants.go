package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Health & catalog routes
	RouteHealth      = "/api/health"
	RouteServices    = "/api/services"
	RouteRegions     = "/api/regions"
	RouteFrameworks  = "/api/frameworks"
	RouteAWSProfiles = "/api/aws-profiles"

	// SSO device-flow routes
	RouteSSOStart       = "/api/sso/start"
	RouteSSOPoll        = "/api/sso/poll"
	RouteSSOStatus      = "/api/sso/status"
	RouteSSOLogout      = "/api/sso/logout"
	RouteSSOAccounts    = "/api/sso/accounts"
	RouteSSORoles       = "/api/sso/accounts/{accountID}/roles"
	RouteSSOCredentials = "/api/sso/credentials"

	// Scan job routes
	RouteScanCreate = "/api/scan"
	RouteScanGet    = "/api/scan/{jobID}"
	RouteScansList  = "/api/scans"

	// Report routes
	RouteReportsList = "/api/reports"
	RouteReportFile  = "/reports/{accountID}/{file...}"
)
