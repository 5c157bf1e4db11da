// Package ui 终端输出渲染
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pterm/pterm"

	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/internal/core/verification"
)

// Format 输出格式
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// Renderer 命令输出渲染器
type Renderer struct {
	format      Format
	out         io.Writer
	interactive bool
}

// NewRenderer 创建渲染器，pretty 模式下 pterm 的输出也指向 out
func NewRenderer(format Format, out io.Writer) *Renderer {
	if format != FormatJSON {
		format = FormatPretty
		pterm.SetDefaultOutput(out)
	}
	return &Renderer{format: format, out: out}
}

// WithInteractive 标记输出为交互式终端，只有交互式终端才显示加载动画
func (r *Renderer) WithInteractive(interactive bool) *Renderer {
	r.interactive = interactive
	return r
}

// JSON 以缩进 JSON 输出任意值
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report 输出验证报告
func (r *Renderer) Report(rep *verification.Report) error {
	if r.format == FormatJSON {
		return r.JSON(rep)
	}
	pterm.DefaultSection.Println("验证结果")
	switch rep.Verdict {
	case verification.VerdictValid:
		pterm.Success.Println("证明有效")
	case verification.VerdictValidLocal:
		pterm.Warning.Println("证明有效，但记录未发布，有效期与撤销状态无法核实")
	case verification.VerdictUnavailable:
		pterm.Warning.Printfln("暂时无法验证: %s", rep.Reason)
	default:
		pterm.Error.Printfln("%s: %s", rep.Verdict, rep.Reason)
	}
	return pterm.DefaultTable.WithHasHeader(false).WithData(ReportRows(rep)).Render()
}

// Record 输出证明记录摘要
func (r *Renderer) Record(rec *proofrecord.ProofRecord, shareURL string) error {
	if r.format == FormatJSON {
		return r.JSON(struct {
			Record   *proofrecord.ProofRecord `json:"record"`
			ShareURL string                   `json:"shareUrl,omitempty"`
		}{rec, shareURL})
	}
	pterm.DefaultSection.Println("证明记录")
	rows := RecordRows(rec)
	if shareURL != "" {
		rows = append(rows, []string{"分享链接", shareURL})
	}
	return pterm.DefaultTable.WithHasHeader(false).WithData(rows).Render()
}

// Publish 输出发布结果
func (r *Renderer) Publish(res *proofrecord.PublishResult) error {
	if r.format == FormatJSON {
		return r.JSON(res)
	}
	switch {
	case res.LocalOnly:
		pterm.Warning.Printfln("上传失败，记录仅保存在本地: %s", res.Error)
	case res.Anchored:
		pterm.Success.Printfln("已发布并锚定: ref=%s tx=%s", res.ContentRef, res.LedgerTx)
	default:
		pterm.Info.Printfln("已发布，未锚定: ref=%s %s", res.ContentRef, res.Error)
	}
	return nil
}

// KeyValues 输出键值表，按键排序
func (r *Renderer) KeyValues(title string, kv map[string]string) error {
	if r.format == FormatJSON {
		return r.JSON(kv)
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, kv[k]})
	}
	pterm.DefaultSection.Println(title)
	return pterm.DefaultTable.WithHasHeader(false).WithData(rows).Render()
}

// ReportRows 验证报告的表格行
func ReportRows(rep *verification.Report) [][]string {
	rows := [][]string{
		{"判定", string(rep.Verdict)},
	}
	if rep.Statement != "" {
		rows = append(rows, []string{"陈述", rep.Statement})
	}
	if rep.Record != nil {
		rows = append(rows,
			[]string{"证明ID", rep.Record.ID},
			[]string{"类型", string(rep.Record.Kind)},
			[]string{"承诺", rep.Record.Commitment.Short()},
		)
		if rep.Record.ExpiresAt != nil {
			rows = append(rows, []string{"过期时间", rep.Record.ExpiresAt.UTC().Format(time.RFC3339)})
		}
	}
	rows = append(rows,
		[]string{"撤销检查", fmt.Sprintf("%v", rep.RevocationChecked)},
		[]string{"检查时间", rep.CheckedAt.UTC().Format(time.RFC3339)},
	)
	return rows
}

// RecordRows 证明记录的表格行
func RecordRows(rec *proofrecord.ProofRecord) [][]string {
	expires := "永不过期"
	if rec.ExpiresAt != nil {
		expires = rec.ExpiresAt.UTC().Format(time.RFC3339)
	}
	rows := [][]string{
		{"证明ID", rec.ID},
		{"类型", string(rec.Kind)},
		{"陈述", rec.Statement},
		{"承诺", rec.Commitment.Short()},
		{"创建时间", rec.CreatedAt.UTC().Format(time.RFC3339)},
		{"过期时间", expires},
	}
	if rec.Owner != "" {
		rows = append(rows, []string{"所有者", rec.Owner})
	}
	if rec.ContentRef != "" {
		rows = append(rows, []string{"内容引用", rec.ContentRef})
	}
	if rec.LedgerTx != "" {
		rows = append(rows, []string{"账本交易", rec.LedgerTx})
	}
	return rows
}
