// Package config manages application configuration for Menagerie.
//
// Configuration is read from the environment, optionally seeded from a
// .env file, and parsed into typed structs with defaults:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - DatabaseConfig: PostgreSQL connection and pool settings
//   - LogConfig: slog level and handler format
//   - BattleLogConfig: battle log retention
//
// # Environment Variables
//
//	DATABASE_URL               - Full connection URL (wins over DB_*)
//	DB_HOST                    - Host (default: localhost)
//	DB_PORT                    - Port (default: 5432)
//	DB_USER, DB_PASSWORD       - Credentials
//	DB_NAME                    - Database name
//	DB_SSLMODE                 - sslmode (default: disable)
//	DB_MAX_OPEN_CONNS          - Pool size (default: 10)
//	DB_MAX_IDLE_CONNS          - Idle connections (default: 5)
//	DB_CONN_MAX_LIFETIME       - Connection lifetime (default: 30m)
//	LOG_LEVEL                  - debug, info, warn, error (default: info)
//	LOG_FORMAT                 - json or text (default: json)
//	BATTLE_LOG_KEEP            - Entries kept per battle (default: 200)
//	BATTLE_LOG_PRUNE_INTERVAL  - Retention sweep interval (default: 1h)
package config
