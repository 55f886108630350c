package cli

import "fullstack-todolist/backend/internal/config"

// LogConfig はCLI向けのログ設定を返します。
// LOG_LEVEL と LOG_FORMAT が未設定の場合だけ、warn とテキスト形式を既定にします。
func LogConfig(base config.LogConfig, lookupEnv func(string) (string, bool)) config.LogConfig {
	if _, ok := lookupEnv("LOG_LEVEL"); !ok {
		base.Level = "warn"
	}
	if _, ok := lookupEnv("LOG_FORMAT"); !ok {
		base.Format = "text"
	}
	return base
}
