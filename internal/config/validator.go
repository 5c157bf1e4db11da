package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/weisyn/traitproof/internal/config/contentstore"
	"github.com/weisyn/traitproof/internal/config/ledger"
	"github.com/weisyn/traitproof/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("配置验证失败，发现以下问题：\n")
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// ValidateAppConfig 启动前校验用户配置
//
// 只校验用户显式给出的字段，未配置的项由各子配置的默认值兜底。
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	if env := appConfig.Environment; env != nil {
		switch *env {
		case "dev", "test", "prod":
		default:
			add("environment", fmt.Sprintf("不支持的运行环境 %q，可选 dev|test|prod", *env))
		}
	}

	if zk := appConfig.ZKProof; zk != nil {
		if zk.Curve != nil && !strings.EqualFold(*zk.Curve, "bn254") {
			add("zkproof.curve", fmt.Sprintf("不支持的曲线 %q，仅支持 bn254", *zk.Curve))
		}
		if zk.KeyFetchAttempts != nil && *zk.KeyFetchAttempts < 1 {
			add("zkproof.key_fetch_attempts", "至少为 1")
		}
		if zk.KeyFetchDelayMs != nil && *zk.KeyFetchDelayMs < 0 {
			add("zkproof.key_fetch_delay_ms", "不能为负数")
		}
		if zk.RemoteKeyURL != nil && *zk.RemoteKeyURL != "" {
			if u, err := url.Parse(*zk.RemoteKeyURL); err != nil || u.Host == "" {
				add("zkproof.remote_key_url", "不是有效的URL")
			}
		}
	}

	if cs := appConfig.ContentStore; cs != nil {
		if cs.Backend != nil {
			switch *cs.Backend {
			case contentstore.BackendMemory, contentstore.BackendBadger:
			default:
				add("content_store.backend", fmt.Sprintf("不支持的后端 %q", *cs.Backend))
			}
		}
		if cs.FetchAttempts != nil && *cs.FetchAttempts < 1 {
			add("content_store.fetch_attempts", "至少为 1")
		}
		if cs.MaxObjectSize != nil && *cs.MaxObjectSize <= 0 {
			add("content_store.max_object_size", "必须为正数")
		}
	}

	if l := appConfig.Ledger; l != nil {
		if l.Backend != nil {
			switch *l.Backend {
			case ledger.BackendMemory, ledger.BackendBadger:
			case ledger.BackendRedis:
				if l.RedisAddr == nil || *l.RedisAddr == "" {
					add("ledger.redis_addr", "redis 后端必须配置地址")
				}
			default:
				add("ledger.backend", fmt.Sprintf("不支持的后端 %q", *l.Backend))
			}
		}
		if l.RevocationWindow != nil && *l.RevocationWindow < 0 {
			add("ledger.revocation_window", "不能为负数")
		}
	}

	if r := appConfig.Records; r != nil {
		if r.DefaultTTLHours != nil && *r.DefaultTTLHours < 0 {
			add("records.default_ttl_hours", "不能为负数")
		}
		if r.ShareBaseURL != nil {
			if u, err := url.Parse(*r.ShareBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				add("records.share_base_url", "不是有效的URL")
			}
		}
	}

	if api := appConfig.API; api != nil && api.Port != nil {
		if *api.Port < 0 || *api.Port > 65535 {
			add("api.port", fmt.Sprintf("端口超出范围: %d", *api.Port))
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
