package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/traitproof/internal/app"
	"github.com/weisyn/traitproof/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/traitproof/internal/core/scoring"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/types"
)

// proveFlags 各 prove 子命令共用的标志
type proveFlags struct {
	scoresPath   string
	identityPath string
	ttl          time.Duration
	noExpiry     bool
	publish      bool

	trait     string
	threshold int
	min       int
	max       int
	role      string
}

var proveOpts proveFlags

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "生成零知识证明",
	Long: `从分数文件读取已解密的分数，生成证明并保存为本地证明记录。

分数文件格式:
  {"testType": "big5", "scores": {"openness": 75, "conscientiousness": 60, ...}}`,
}

var proveThresholdCmd = &cobra.Command{
	Use:     "threshold",
	Short:   "证明某维度分数不低于阈值",
	Example: "  traitproof prove threshold --scores scores.json --trait openness --threshold 70",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd, func(scores types.ScoreSet) (zkproof.Statement, error) {
			trait, score, err := traitScore(scores, proveOpts.trait)
			if err != nil {
				return nil, err
			}
			return zkproof.TraitThreshold{Trait: trait, Score: score, Threshold: proveOpts.threshold}, nil
		})
	},
}

var proveRangeCmd = &cobra.Command{
	Use:     "range",
	Short:   "证明某维度分数落在区间内",
	Example: "  traitproof prove range --scores scores.json --trait extraversion --min 40 --max 60",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd, func(scores types.ScoreSet) (zkproof.Statement, error) {
			trait, score, err := traitScore(scores, proveOpts.trait)
			if err != nil {
				return nil, err
			}
			return zkproof.TraitRange{Trait: trait, Score: score, Min: proveOpts.min, Max: proveOpts.max}, nil
		})
	},
}

var proveCompletedCmd = &cobra.Command{
	Use:   "completed",
	Short: "证明完成了测评，不公开任何分数",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd, func(scores types.ScoreSet) (zkproof.Statement, error) {
			values := make([]int, 0, len(scores))
			for _, v := range scores.Ordered() {
				values = append(values, int(v))
			}
			return zkproof.TestCompleted{Scores: values}, nil
		})
	},
}

var proveRoleFitCmd = &cobra.Command{
	Use:     "rolefit",
	Short:   "证明五维分数满足角色策略",
	Example: "  traitproof prove rolefit --scores scores.json --role Leader",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd, func(scores types.ScoreSet) (zkproof.Statement, error) {
			role, err := types.ParseRole(proveOpts.role)
			if err != nil {
				return nil, err
			}
			return zkproof.RoleFit{Role: role, Scores: scores}, nil
		})
	},
}

func init() {
	pf := proveCmd.PersistentFlags()
	pf.StringVar(&proveOpts.scoresPath, "scores", "", "分数文件 (JSON)")
	pf.StringVar(&proveOpts.identityPath, "identity", "", "所有者私钥文件，缺省时生成匿名记录")
	pf.DurationVar(&proveOpts.ttl, "ttl", 0, "有效期，0 使用配置的默认值")
	pf.BoolVar(&proveOpts.noExpiry, "no-expiry", false, "记录永不过期")
	pf.BoolVar(&proveOpts.publish, "publish", false, "生成后立即发布")
	_ = proveCmd.MarkPersistentFlagRequired("scores")

	for _, c := range []*cobra.Command{proveThresholdCmd, proveRangeCmd} {
		c.Flags().StringVar(&proveOpts.trait, "trait", "", "维度名称，例如 openness")
		_ = c.MarkFlagRequired("trait")
	}
	proveThresholdCmd.Flags().IntVar(&proveOpts.threshold, "threshold", 0, "阈值 [0,100]")
	_ = proveThresholdCmd.MarkFlagRequired("threshold")
	proveRangeCmd.Flags().IntVar(&proveOpts.min, "min", 0, "区间下界 [0,100]")
	proveRangeCmd.Flags().IntVar(&proveOpts.max, "max", 100, "区间上界 [0,100]")
	proveRoleFitCmd.Flags().StringVar(&proveOpts.role, "role", "", "角色名称或编号 (Leader|Researcher|Mediator|Creative|Analyst)")
	_ = proveRoleFitCmd.MarkFlagRequired("role")

	proveCmd.AddCommand(proveThresholdCmd, proveRangeCmd, proveCompletedCmd, proveRoleFitCmd)
}

func traitScore(scores types.ScoreSet, name string) (types.Trait, int, error) {
	trait, err := types.ParseTrait(name)
	if err != nil {
		return 0, 0, err
	}
	v, ok := scores.Get(trait)
	if !ok {
		return 0, 0, fmt.Errorf("分数文件中没有维度 %s", trait)
	}
	return trait, int(v), nil
}

// recordTTL 把命令行标志转换为 CreateRecord 的 ttl 约定
func recordTTL(f proveFlags) time.Duration {
	if f.noExpiry {
		return -1
	}
	return f.ttl
}

func runProve(cmd *cobra.Command, build func(types.ScoreSet) (zkproof.Statement, error)) error {
	var owner string
	if proveOpts.identityPath != "" {
		id, err := signature.LoadIdentity(proveOpts.identityPath)
		if err != nil {
			return err
		}
		owner = id.Owner()
	}

	scores, err := scoring.NewFileSource(proveOpts.scoresPath).LoadScores(cmd.Context(), owner)
	if err != nil {
		return err
	}
	st, err := build(scores)
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		r := renderer(cmd)
		stop, err := r.TrackProof(a.Events)
		if err != nil {
			return err
		}
		proof, err := a.Engine.Generate(ctx, st)
		stop()
		if err != nil {
			return err
		}
		record, err := a.Records.CreateRecord(proof, owner, recordTTL(proveOpts))
		if err != nil {
			return err
		}

		if proveOpts.publish {
			res, err := a.Records.Publish(ctx, record)
			if err != nil {
				return err
			}
			if err := r.Publish(res); err != nil {
				return err
			}
		}
		share, err := a.Records.ExportShareable(record)
		if err != nil {
			return err
		}
		return r.Record(record, share)
	})
}
