// Package configs 内置的环境配置
package configs

import _ "embed"

//go:embed development.json
var developmentConfig []byte

//go:embed production.json
var productionConfig []byte

// ForEnvironment 按环境名返回内置配置，未知环境返回 nil
func ForEnvironment(env string) []byte {
	switch env {
	case "dev", "development":
		return developmentConfig
	case "prod", "production":
		return productionConfig
	}
	return nil
}
