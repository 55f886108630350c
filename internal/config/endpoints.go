package config

import "strings"

const (
	// DevelopmentBaseURL は開発環境のAPIベースURLです。
	DevelopmentBaseURL = "http://localhost:3000"
	// ProductionBaseURL は本番環境のAPIベースURLです。
	ProductionBaseURL = "https://fullstack-todolist-upnv.onrender.com"
)

// Endpoints はAPIの各エンドポイントURLです。
type Endpoints struct {
	Todos    string
	GetTodos string
	Health   string
}

// APIBaseURL はクライアントが使うベースURLを返します。
// 明示的な API_BASE_URL が最優先で、無ければ環境ごとの既定値を使います。
func (c *Config) APIBaseURL() string {
	if c.Client.BaseURL != "" {
		return strings.TrimRight(c.Client.BaseURL, "/")
	}
	if c.App.IsDevelopment() {
		return DevelopmentBaseURL
	}
	return ProductionBaseURL
}

// NewEndpoints はベースURLから各エンドポイントを組み立てます。
func NewEndpoints(baseURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return Endpoints{
		Todos:    base + "/api/todos",
		GetTodos: base + "/api/gettodos",
		Health:   base + "/health",
	}
}
