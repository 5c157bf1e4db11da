package records

// 证明记录默认配置值
const (
	// defaultTTLHours 默认有效期 30 天
	defaultTTLHours = 24 * 30

	// defaultShareBaseURL 分享链接前缀
	defaultShareBaseURL = "https://traitproof.app"

	defaultCheckRevocation = true
)
