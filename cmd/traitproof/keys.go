package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/pkg/types"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "证明/验证密钥管理",
}

var keysSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "编译电路并生成（或加载）全部密钥",
	Long: `首次运行时对每个电路执行 Groth16 Setup 并写入配置的密钥目录，
之后的运行直接加载已有密钥。输出各电路验证密钥的哈希，供验证方核对。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			hashes := make(map[string]string, len(types.AllProofKinds()))
			for _, kind := range types.AllProofKinds() {
				h, err := a.Engine.VerifyingKeyHash(kind)
				if err != nil {
					return err
				}
				hashes[string(kind)] = h
			}
			return renderer(cmd).KeyValues("验证密钥哈希", hashes)
		})
	},
}

func init() {
	keysCmd.AddCommand(keysSetupCmd)
}
