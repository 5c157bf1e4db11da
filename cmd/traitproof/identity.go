package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
)

var identityOut string

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "所有者身份（secp256k1 密钥）",
}

var identityNewCmd = &cobra.Command{
	Use:   "new",
	Short: "生成新的所有者私钥",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(identityOut); err == nil {
			return fmt.Errorf("文件已存在，拒绝覆盖: %s", identityOut)
		}
		id, err := signature.NewIdentity()
		if err != nil {
			return err
		}
		if err := id.Save(identityOut); err != nil {
			return err
		}
		return renderer(cmd).KeyValues("新身份", map[string]string{
			"所有者":  id.Owner(),
			"私钥文件": identityOut,
		})
	},
}

var identityShowCmd = &cobra.Command{
	Use:   "show <key-file>",
	Short: "显示私钥对应的所有者标识",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := signature.LoadIdentity(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id.Owner())
		return err
	},
}

func init() {
	identityNewCmd.Flags().StringVar(&identityOut, "out", "identity.key", "私钥输出路径")
	identityCmd.AddCommand(identityNewCmd, identityShowCmd)
}
