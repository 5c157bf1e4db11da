package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/internal/core/infrastructure/contentstore"
	"github.com/weisyn/traitproof/internal/core/verification"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <ref|uri|token>",
	Short: "验证证明",
	Long: `按内容引用 (Qm...)、分享链接或分享令牌验证证明。

判定为 valid 时退出码为 0，其余判定退出码为 1。
valid_local 表示证明本身有效但记录未发布，分享链接中的有效期与所有者无法核实，同样以 1 退出。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := strings.TrimSpace(args[0])
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var report *verification.Report
			if isContentRef(target) {
				report = a.Protocol.VerifyReference(ctx, target)
			} else {
				report = a.Protocol.VerifyBundle(ctx, target)
			}
			if err := renderer(cmd).Report(report); err != nil {
				return err
			}
			if report.Verdict != verification.VerdictValid {
				return errSilent
			}
			return nil
		})
	},
}

func isContentRef(s string) bool {
	_, err := contentstore.ParseRef(s)
	return err == nil
}
