package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/proofrecord"
)

var (
	revokeIdentity string
	listOwner      string
)

var publishCmd = &cobra.Command{
	Use:   "publish <proof-id>",
	Short: "上传证明包并在账本锚定",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			record, err := loadRecord(ctx, a, args[0])
			if err != nil {
				return err
			}
			res, err := a.Records.Publish(ctx, record)
			if err != nil {
				return err
			}
			return renderer(cmd).Publish(res)
		})
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <proof-id>",
	Short: "所有者签名撤销已发布的证明",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := signature.LoadIdentity(revokeIdentity)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			record, err := loadRecord(ctx, a, args[0])
			if err != nil {
				return err
			}
			rev, err := a.Records.Revoke(ctx, record, id.PrivateKey())
			if err != nil {
				return err
			}
			return renderer(cmd).KeyValues("撤销", map[string]string{
				"内容引用": rev.ContentRef,
				"所有者":  rev.Owner,
				"账本交易": rev.LedgerTx,
			})
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <proof-id>",
	Short: "生成分享链接",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			record, err := loadRecord(ctx, a, args[0])
			if err != nil {
				return err
			}
			link, err := a.Records.ExportShareable(record)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出本地证明记录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			records, err := a.Records.Store().List(ctx, listOwner)
			if err != nil {
				return err
			}
			r := renderer(cmd)
			if globalFlags.OutputFormat == "json" {
				return r.JSON(records)
			}
			rows := [][]string{{"ID", "类型", "陈述", "内容引用"}}
			for _, rec := range records {
				rows = append(rows, []string{rec.ID, string(rec.Kind), rec.Statement, rec.ContentRef})
			}
			return pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render()
		})
	},
}

func init() {
	revokeCmd.Flags().StringVar(&revokeIdentity, "identity", "", "所有者私钥文件")
	_ = revokeCmd.MarkFlagRequired("identity")
	listCmd.Flags().StringVar(&listOwner, "owner", "", "只列出该所有者的记录")
}

func loadRecord(ctx context.Context, a *app.App, id string) (*proofrecord.ProofRecord, error) {
	store := a.Records.Store()
	if store == nil {
		return nil, fmt.Errorf("本地记录存储不可用")
	}
	return store.Get(ctx, id)
}
