package cli

import (
	"context"

	"github.com/dmitrijs2005/regsync/internal/config"
	"github.com/dmitrijs2005/regsync/internal/logging"
	"github.com/dmitrijs2005/regsync/internal/reconcile"
	"github.com/spf13/cobra"
)

type reconciler interface {
	Reconcile(ctx context.Context, opts reconcile.Options) (*reconcile.Result, error)
	Probe(ctx context.Context) (reconcile.State, error)
}

type reconcilerFactory func(ctx context.Context, cfg *config.Config, log logging.Logger) (reconciler, error)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg           *config.Config
	log           logging.Logger
	newReconciler reconcilerFactory
}

// NewRootCommand creates the root command wired to the real backends.
func NewRootCommand() *cobra.Command {
	return newRootCommand(buildReconciler)
}

func newRootCommand(factory reconcilerFactory) *cobra.Command {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	a := &app{cfg: cfg, newReconciler: factory}

	cmd := &cobra.Command{
		Use:   "regsync",
		Short: "Keep the project registry in sync with its encrypted S3 copy",
		Long: `regsync reconciles the local registry artifact (a SQLite file) with an
encrypted copy in the project's S3 bucket. It creates the bucket, the
artifact and the encryption key when they are missing, and restores the
local file from the bucket when it is gone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyJSON(cfg, cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.log = logging.New(logging.Options{
				JSON:  cfg.LogJSON,
				Debug: cfg.Debug,
				Out:   cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	config.RegisterFlags(cmd.PersistentFlags(), cfg)

	cmd.AddCommand(newReconcileCommand(a))
	cmd.AddCommand(newStatusCommand(a))
	cmd.AddCommand(newResourcesCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.OperationTimeout)
}
