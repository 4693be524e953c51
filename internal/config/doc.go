// Package config handles configuration loading for babel-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${BABEL_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "24h"
//	translator:
//	  timeout: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/babel/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${BABEL_JWT_SECRET}"  # Required, minimum 32 bytes
//	  token_ttl: "24h"
//
// Translation backend (LibreTranslate-compatible API):
//
//	translator:
//	  enabled: true
//	  url: "http://localhost:5000/translate"
//	  api_key: "${BABEL_TRANSLATE_KEY}"
//	  timeout: "10s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Metrics:
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Validation
//
// Load() validates:
//
//   - HTTP listen address presence
//   - Database path presence
//   - JWT secret minimum length (32 bytes)
//   - Translator URL presence when the translator is enabled
//   - Duration format validity
package config
