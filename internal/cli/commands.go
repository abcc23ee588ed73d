package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/regsync/internal/artifact"
	"github.com/dmitrijs2005/regsync/internal/buildinfo"
	"github.com/dmitrijs2005/regsync/internal/reconcile"
	"github.com/dmitrijs2005/regsync/internal/registry"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReconcileCommand(a *app) *cobra.Command {
	var opts reconcile.Options

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Converge the local artifact, the project bucket and the remote copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			r, err := a.newReconciler(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}

			res, err := r.Reconcile(ctx, opts)
			if err != nil {
				return err
			}
			defer res.Artifact.Close()

			printResult(cmd.OutOrStdout(), res, a.cfg.ArtifactPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "push even when the remote copy exists")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local/remote state without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			r, err := a.newReconciler(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}

			st, err := r.Probe(ctx)
			if err != nil {
				return err
			}

			printState(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newResourcesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the resources recorded in the local artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			art, err := artifact.OpenReadOnly(ctx, a.cfg.ArtifactPath)
			if err != nil {
				return fmt.Errorf("%w (run `regsync reconcile` first)", err)
			}
			defer art.Close()

			entries, err := registry.New(art.DB, a.log).List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, color.YellowString("!")+" registry is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-8s %s\n", e.ResourceType, e.Identifier)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// skip config loading and validation
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

func printResult(w io.Writer, res *reconcile.Result, path string) {
	verb := "in sync"
	if res.Action != reconcile.ActionNone {
		verb = string(res.Action)
	}
	fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), verb)
	fmt.Fprintf(w, "  %s %s\n", color.CyanString("state: "), res.State)
	fmt.Fprintf(w, "  %s %s\n", color.CyanString("bucket:"), res.BucketName)
	fmt.Fprintf(w, "  %s %s\n", color.CyanString("local: "), path)
}

func printState(w io.Writer, st reconcile.State) {
	mark := func(ok bool) string {
		if ok {
			return color.GreenString("present")
		}
		return color.RedString("missing")
	}

	fmt.Fprintf(w, "local artifact  %s\n", mark(st.Local))
	if !st.Bucket {
		fmt.Fprintf(w, "project bucket  %s\n", mark(false))
		fmt.Fprintf(w, "remote artifact %s\n", color.YellowString("n/a"))
		return
	}
	fmt.Fprintf(w, "project bucket  %s (%s)\n", mark(true), st.BucketName)
	fmt.Fprintf(w, "remote artifact %s\n", mark(st.Remote))
}
