// Package config manages application configuration for the bookshelf server.
//
// Configuration is loaded from environment variables with development
// defaults, then checked once at startup:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// Validate reports every problem at once through errors.Join.
//
// # Configuration Groups
//
//   - ServerConfig: HTTP listener, timeouts, allowed origins
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: key paths and lifetime of API access tokens
//   - SessionConfig: browser session cookie and optional sqlite3 store
//   - AccessConfig: Book permission groups file and the group new users join
//   - RateLimitConfig: login attempts allowed per window
//
// # Environment Variables
//
//	SERVER_PORT           - HTTP port (default: 8080)
//	SERVER_ENV            - development, production or test
//	DB_HOST, DB_PORT      - SurrealDB address
//	DB_NAMESPACE          - SurrealDB namespace (default: bookshelf)
//	JWT_PRIVATE_KEY_PATH  - PEM encoded RSA private key
//	SESSION_STORE_URL     - e.g. sqlite3:sessions.db, empty for memory
//	ACCESS_GROUPS_FILE    - INI file mapping groups to permissions
//	LOGIN_RATE_LIMIT      - login attempts per LOGIN_RATE_WINDOW (0 disables)
package config
