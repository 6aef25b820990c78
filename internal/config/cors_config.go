package config

import "strings"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// Dev servers used by the browser frontend.
var allowedOrigins = AllowedOrigins{
	"http://localhost:5173": nullValue{},
	"http://localhost:3000": nullValue{},
	"http://localhost:8080": nullValue{},
}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := GetEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		return allowedOrigins
	}
	parsed := make(AllowedOrigins)
	for _, origin := range strings.Split(origins, ",") {
		parsed[strings.TrimSpace(origin)] = nullValue{}
	}
	return parsed
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
