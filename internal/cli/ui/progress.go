package ui

import (
	"github.com/pterm/pterm"

	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
)

var stageText = map[string]string{
	"witness_executing": "计算见证...",
	"witness_ok":        "见证满足约束",
	"proof_generating":  "生成 Groth16 证明...",
}

// StageText 证明状态的提示文字
func StageText(state string) string {
	if t, ok := stageText[state]; ok {
		return t
	}
	return state
}

// TrackProof 订阅证明状态事件并驱动加载动画，返回的函数取消订阅并收起动画
//
// JSON 模式或非交互式终端下不输出任何内容。
func (r *Renderer) TrackProof(bus event.EventBus) (func(), error) {
	if r.format == FormatJSON || !r.interactive || bus == nil {
		return func() {}, nil
	}
	spinner, err := pterm.DefaultSpinner.WithText("准备证明...").WithRemoveWhenDone(false).Start()
	if err != nil {
		return nil, err
	}

	done := false
	handler := func(e event.ProofStateChanged) {
		switch e.To {
		case "proof_ready":
			spinner.Success("证明已生成")
			done = true
		case "witness_failed":
			spinner.Fail("分数不满足所声明的条件")
			done = true
		default:
			spinner.UpdateText(StageText(e.To))
		}
	}
	if err := bus.Subscribe(event.EventProofState, handler); err != nil {
		_ = spinner.Stop()
		return nil, err
	}
	return func() {
		_ = bus.Unsubscribe(event.EventProofState, handler)
		if !done {
			_ = spinner.Stop()
		}
	}, nil
}
