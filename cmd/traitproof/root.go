package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/traitproof/configs"
	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/internal/cli/ui"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // 配置文件
	Environment  string // 未指定配置文件时使用的内置配置
	OutputFormat string // 输出格式
}

var globalFlags GlobalFlags

// errSilent 已经输出过结果，只需要非零退出码
var errSilent = errors.New("silent failure")

var rootCmd = &cobra.Command{
	Use:   "traitproof",
	Short: "人格特质零知识证明工具",
	Long: `traitproof 基于 Groth16 (BN254) 为人格测评分数生成零知识证明。

证明只公开谓词（例如 openness >= 70），分数本身通过 MiMC 承诺隐藏。
生成的证明可以发布到内容寻址存储并在账本上锚定，所有者可以签名撤销。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径 (JSON)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Environment, "env", "dev", "未指定 --config 时使用的内置配置: dev|prod")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "pretty", "输出格式: pretty|json")

	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(anchorCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(versionCmd)
}

func renderer(cmd *cobra.Command) *ui.Renderer {
	out := cmd.OutOrStdout()
	return ui.NewRenderer(ui.Format(globalFlags.OutputFormat), out).WithInteractive(isTerminal(out))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// configOption --config 优先，否则使用 --env 对应的内置配置
func configOption() (app.Option, error) {
	if globalFlags.ConfigPath != "" {
		return app.WithConfigFile(globalFlags.ConfigPath), nil
	}
	data := configs.ForEnvironment(globalFlags.Environment)
	if data == nil {
		return nil, fmt.Errorf("未知环境: %s", globalFlags.Environment)
	}
	return app.WithEmbeddedConfig(data), nil
}

// withApp 启动不含 HTTP 服务的应用后执行 fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	opt, err := configOption()
	if err != nil {
		return err
	}
	return app.Run(cmd.Context(), fn, opt)
}
