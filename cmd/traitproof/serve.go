package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP验证服务",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := configOption()
		if err != nil {
			return err
		}
		a, err := app.New(opt, app.WithAPI())
		if err != nil {
			return err
		}
		if err := a.Start(cmd.Context()); err != nil {
			return err
		}
		a.Logger.Infof("验证服务已就绪: %s", a.Server.Addr())
		return a.Wait()
	},
}
