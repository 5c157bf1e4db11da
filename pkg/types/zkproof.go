// Package types provides zero-knowledge proof type definitions.
package types

import (
	"strconv"
	"strings"
)

// ProofKind 谓词类型标识
//
// 字符串值即账本 memo 中的 proofType 字段，属于兼容性契约。
type ProofKind string

const (
	ProofKindTraitThreshold ProofKind = "trait_threshold"
	ProofKindTraitRange     ProofKind = "trait_range"
	ProofKindTestCompleted  ProofKind = "test_completed"
	ProofKindRoleFit        ProofKind = "role_fit"
)

// AllProofKinds 全部谓词类型
func AllProofKinds() []ProofKind {
	return []ProofKind{ProofKindTraitThreshold, ProofKindTraitRange, ProofKindTestCompleted, ProofKindRoleFit}
}

// Valid 是否为已知谓词类型
func (k ProofKind) Valid() bool {
	switch k {
	case ProofKindTraitThreshold, ProofKindTraitRange, ProofKindTestCompleted, ProofKindRoleFit:
		return true
	}
	return false
}

// Role 角色匹配证明中的角色编号，取值 [1,5]
type Role int

const (
	RoleLeader     Role = 1
	RoleResearcher Role = 2
	RoleMediator   Role = 3
	RoleCreative   Role = 4
	RoleAnalyst    Role = 5
)

var roleNames = map[Role]string{
	RoleLeader:     "Leader",
	RoleResearcher: "Researcher",
	RoleMediator:   "Mediator",
	RoleCreative:   "Creative",
	RoleAnalyst:    "Analyst",
}

// AllRoles 按编号升序返回全部角色
func AllRoles() []Role {
	return []Role{RoleLeader, RoleResearcher, RoleMediator, RoleCreative, RoleAnalyst}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole 按编号或名称（大小写不敏感）解析角色
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		r := Role(n)
		if !r.Valid() {
			return 0, &DomainError{Field: "role", Value: n, Min: int(RoleLeader), Max: int(RoleAnalyst)}
		}
		return r, nil
	}
	for r, name := range roleNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, &DomainError{Field: "role", Value: s, Reason: "unknown role"}
}

// 公开输入键名
//
// 证明记录、分享包和验证页面共用这些键；修改键名会破坏已发布记录的可验证性。
const (
	PublicInputTrait      = "trait"
	PublicInputTraitID    = "traitId"
	PublicInputThreshold  = "threshold"
	PublicInputMin        = "min"
	PublicInputMax        = "max"
	PublicInputRoleID     = "roleId"
	PublicInputRole       = "role"
	PublicInputLevel      = "level"
	PublicInputCommitment = "commitment"
)
