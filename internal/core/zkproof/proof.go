package zkproof

import (
	"time"

	"github.com/weisyn/traitproof/internal/core/zkproof/commitment"
	"github.com/weisyn/traitproof/pkg/types"
)

// CircuitProof Groth16 证明及其公开部分
//
// 可以原样序列化分享：私有分数不在其中，盐值只保存在 Secret 且不参与序列化。
type CircuitProof struct {
	Kind             types.ProofKind       `json:"kind"`
	CircuitID        string                `json:"circuitId"`
	CircuitVersion   uint32                `json:"circuitVersion"`
	Curve            string                `json:"curve"`
	Scheme           string                `json:"scheme"`
	Proof            []byte                `json:"proof"`
	PublicInputs     map[string]string     `json:"publicInputs"`
	Commitment       commitment.Commitment `json:"commitment"`
	VerifyingKeyHash string                `json:"vkHash"`
	Statement        string                `json:"statement"`
	ConstraintCount  int                   `json:"constraintCount,omitempty"`
	GeneratedAt      time.Time             `json:"generatedAt"`

	// Secret 仅返回给证明者本人
	Secret *Secret `json:"-"`
}

// Secret 证明者需要自行保管的打开信息
type Secret struct {
	Salt commitment.Salt
}
