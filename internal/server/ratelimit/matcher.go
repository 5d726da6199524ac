package ratelimit

import (
	"strings"
)

// unlimited lists the method/path pairs that are never limited. The event
// stream is a single long-lived request per client.
var unlimited = map[string]bool{
	"GET /health": true,
	"GET /events": true,
}

// MatchEndpoint returns the configuration that governs a request, or nil when
// the default limit applies. An exact path wins over a prefix ("/candidates/"
// covers "/candidates/{email}") and among prefixes the longest wins. An empty
// Method matches every method.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != "" && config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if !strings.HasSuffix(config.Path, "/") || !strings.HasPrefix(path, config.Path) {
			continue
		}
		if best == nil || len(config.Path) > len(best.Path) {
			best = config
		}
	}
	return best
}
