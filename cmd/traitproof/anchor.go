package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/pkg/types"
)

var anchorOpts struct {
	payloadPath  string
	testType     string
	identityPath string
}

var anchorCmd = &cobra.Command{
	Use:   "anchor",
	Short: "上传加密的评分记录并在账本锚定",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		testType, err := types.ParseTestType(anchorOpts.testType)
		if err != nil {
			return err
		}
		id, err := signature.LoadIdentity(anchorOpts.identityPath)
		if err != nil {
			return err
		}
		payload, err := os.ReadFile(anchorOpts.payloadPath)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Records.AnchorScores(ctx, testType, payload, id.PrivateKey())
			if err != nil {
				return err
			}
			return renderer(cmd).KeyValues("评分锚定", map[string]string{
				"测评类型": string(res.TestType),
				"内容引用": res.ContentRef,
				"所有者":  res.Owner,
				"账本交易": res.LedgerTx,
			})
		})
	},
}

func init() {
	anchorCmd.Flags().StringVar(&anchorOpts.payloadPath, "payload", "", "已加密的评分记录文件")
	anchorCmd.Flags().StringVar(&anchorOpts.testType, "test", string(types.TestTypeBig5), "测评类型 big5|disc|mbti|enneagram")
	anchorCmd.Flags().StringVar(&anchorOpts.identityPath, "identity", "", "所有者私钥文件")
	_ = anchorCmd.MarkFlagRequired("payload")
	_ = anchorCmd.MarkFlagRequired("identity")
}
