// Package config はアプリケーション設定を読み込みます。
package config

import (
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	App    AppConfig    `yaml:"app"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	CORS   CORSConfig   `yaml:"cors"`
	Log    LogConfig    `yaml:"log"`
	Client ClientConfig `yaml:"client"`
}

// AppConfig は実行環境の設定です。
type AppConfig struct {
	Env string `yaml:"env" env:"APP_ENV" env-default:"development"`
}

// IsDevelopment は開発環境の場合にtrueを返します。
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig はTodoストアの接続設定です。
type StoreConfig struct {
	Driver          string        `yaml:"driver"             env:"STORE_DRIVER"             env-default:"mongo"`
	MongoURI        string        `yaml:"mongo_uri"          env:"MONGO_URI"                env-default:"mongodb://localhost:27017"`
	MongoDatabase   string        `yaml:"mongo_database"     env:"MONGO_DATABASE"           env-default:"todos"`
	MongoCollection string        `yaml:"mongo_collection"   env:"MONGO_COLLECTION"         env-default:"todos"`
	MySQLDSN        string        `yaml:"mysql_dsn"          env:"MYSQL_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns"     env:"STORE_MAX_OPEN_CONNS"     env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"     env:"STORE_MAX_IDLE_CONNS"     env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"  env:"STORE_CONN_MAX_LIFETIME"  env-default:"5m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"STORE_CONNECT_TIMEOUT"    env-default:"10s"`
}

// AuthConfig はJWT認証の設定です。JWTSecretが空の場合、認証は無効です。
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"fullstack-todolist"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Enabled は認証が有効な場合にtrueを返します。
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// CORSConfig はCORSの設定です。
type CORSConfig struct {
	AllowedOrigins   string        `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"http://localhost:5173,http://localhost:3000"`
	AllowedMethods   string        `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string        `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Origin,Content-Type,Accept,Authorization"`
	AllowCredentials bool          `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           time.Duration `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"12h"`
}

// LogConfig はログの設定です。
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ClientConfig はAPIクライアント (todoctl) の設定です。
type ClientConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL"`
	Token   string        `yaml:"token"    env:"API_TOKEN"`
	Timeout time.Duration `yaml:"timeout"  env:"API_TIMEOUT" env-default:"15s"`
}

// SplitList はカンマ区切りの設定値をトリムしたスライスに変換します。
func SplitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
