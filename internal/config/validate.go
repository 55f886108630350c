package config

import (
	"fmt"
	"strings"
)

// Validate は読み込み後の設定値を検証します。Load から自動的に呼ばれます。
// ストアの接続先は ValidateStore で別途検証します (CLIはストアを使わないため)。
func (c *Config) Validate() error {
	switch strings.ToLower(c.App.Env) {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("app.env must be %q or %q (got %q)", EnvDevelopment, EnvProduction, c.App.Env)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	return nil
}

// ValidateStore はストアドライバーと接続先を検証します。
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required for driver %q", DriverMongo)
		}
		if c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return fmt.Errorf("store.mongo_database and store.mongo_collection are required")
		}
	case DriverMySQL:
		if c.Store.MySQLDSN == "" {
			return fmt.Errorf("store.mysql_dsn is required for driver %q", DriverMySQL)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
