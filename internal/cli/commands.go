package cli

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thebtf/flowcheck/internal/claimcache"
	gormdb "github.com/thebtf/flowcheck/internal/db/gorm"
	"github.com/thebtf/flowcheck/internal/factapi"
	"github.com/thebtf/flowcheck/internal/recommend"
	"github.com/thebtf/flowcheck/internal/trend"
	"github.com/thebtf/flowcheck/pkg/models"
)

func (a *app) newMigrateCmd() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply pending migrations and list the applied ones. With --rollback the last migration is undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if rollback {
				if err := store.RollbackLast(); err != nil {
					return fmt.Errorf("rollback: %w", err)
				}
			}

			applied, err := store.AppliedMigrations()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dialect: %s\n", store.Dialect())
			for _, id := range applied {
				fmt.Fprintf(out, "applied: %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "undo the last migration")
	return cmd
}

func (a *app) newCheckCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "check <claim>",
		Short: "Fact-check a claim, reusing stored results when possible",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			normalizer, err := a.normalizer()
			if err != nil {
				return err
			}

			client := factapi.New(factapi.Config{
				APIKey:  a.cfg.FactCheckAPIKey,
				BaseURL: a.cfg.FactCheckBaseURL,
				Timeout: a.cfg.FetchTimeout,
				RPS:     a.cfg.FactCheckRPS,
				Burst:   a.cfg.FactCheckBurst,
			})
			cache := claimcache.New(gormdb.NewClaimStore(store, nil), client, claimcache.Options{
				Normalizer:   normalizer,
				Threshold:    a.cfg.SimilarityThreshold,
				FetchTimeout: a.cfg.FetchTimeout,
			})

			var opts []claimcache.ResolveOption
			if force {
				opts = append(opts, claimcache.WithForce())
			}
			res, err := cache.Resolve(cmd.Context(), strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}

			state := "miss"
			if res.Hit {
				state = "hit"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %s (score %.4f)\n", state, res.Score)
			return writeIndented(cmd, res.Payload)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip the history lookup")
	return cmd
}

func (a *app) newRecommendCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest goals related to a user's latest goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			normalizer, err := a.normalizer()
			if err != nil {
				return err
			}

			goals, err := gormdb.NewGoalStore(store, nil).ListGoals(cmd.Context())
			if err != nil {
				return err
			}
			clusterer := recommend.New(recommend.Config{
				ClusterCount: a.cfg.ClusterCount,
				MaxResults:   a.cfg.MaxRecommendations,
				Seed:         a.cfg.ClusterSeed,
				Restarts:     a.cfg.ClusterRestarts,
			}, normalizer)

			for _, text := range clusterer.Recommend(userID, goals) {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) newForecastCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Predict a user's next progress milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := gormdb.NewProgressStore(store, nil).ListProgressByUser(cmd.Context(), userID, 0)
			if err != nil {
				return err
			}
			f, ok := trend.PredictNext(models.EventTimes(events), trend.DefaultHorizon)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "insufficient data: %d events, need %d\n", len(events), trend.MinEvents)
				return nil
			}
			data, err := json.Marshal(f)
			if err != nil {
				return err
			}
			return writeIndented(cmd, data)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "settings file: %s\n", a.settings)
			data, err := json.Marshal(a.cfg.Redacted())
			if err != nil {
				return err
			}
			return writeIndented(cmd, data)
		},
	})
	return cmd
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flowcheck %s\n", a.version)
		},
	}
}

func writeIndented(cmd *cobra.Command, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
