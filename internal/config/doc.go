// Package config loads factory settings with viper.
//
// Values come from defaults, an optional config file named by
// FACTORY_CONFIG, and FACTORY_-prefixed environment variables, in
// increasing precedence:
//
//	FACTORY_STORE_DRIVER       - memory (default), sqlite or surreal
//	FACTORY_STORE_SQLITE_PATH  - database file for the sqlite driver
//	FACTORY_SURREAL_HOST       - SurrealDB host (default: localhost)
//	FACTORY_SURREAL_PORT       - SurrealDB port (default: 8000)
//	FACTORY_SURREAL_NAMESPACE  - namespace (default: factory)
//	FACTORY_SURREAL_DATABASE   - database (default: test)
//	FACTORY_SEQUENCE_START     - first sequence value (default: 1)
//	FACTORY_STUB_ID_START      - first stub id (default: 1000)
//	FACTORY_LOG_LEVEL          - debug, info, warn (default) or error
//	FACTORY_LOG_FORMAT         - text (default) or json
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	logger := cfg.Logger(os.Stderr)
package config
