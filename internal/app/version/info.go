// Package version 提供构建版本信息
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时通过 -ldflags "-X" 注入
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
	Commit    = "unknown"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion 多行版本信息，用于 version 命令
func GetFullVersion() string {
	info := GetBuildInfo()
	s := fmt.Sprintf("traitproof %s", info.Version)
	if info.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			s += fmt.Sprintf("\n构建时间: %s", t.Format("2006-01-02 15:04:05 MST"))
		} else {
			s += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}
	if info.Commit != "unknown" {
		s += fmt.Sprintf("\n提交: %s", info.Commit)
	}
	s += fmt.Sprintf("\nGo版本: %s\n平台: %s", info.GoVersion, info.Platform)
	return s
}
