package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/forcesync/cmd/forcesync/opts"
	"github.com/walteh/forcesync/pkg/log"
	"github.com/walteh/forcesync/pkg/operation"
	"github.com/walteh/forcesync/pkg/profile"
	"gitlab.com/tozd/go/errors"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Work with profiles",
	}

	cmd.AddCommand(newProfileSyncCmd(ro))
	return cmd
}

type profileSyncFlags struct {
	folders        []string
	profiles       []string
	deleteOrphans  bool
	excludeManaged bool
}

func newProfileSyncCmd(ro *opts.RootOpts) *cobra.Command {
	f := &profileSyncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring local profiles in line with the remote",
		Long: `Sync compares the profiles in the package directories with the ones the
remote knows. Profiles missing locally are added, existing ones are updated
and, with --delete, profiles the remote does not know are removed.

Profiles are retrieved in batches. With --excludemanaged, permissions on
managed package components are left out of the written files.`,
		Example: `  forcesync profile sync
  forcesync profile sync --profilelist Admin,Sales --folder force-app
  forcesync profile sync --delete --excludemanaged`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			roots := f.folders
			if len(roots) == 0 {
				r, err := ro.Config.SourceRoots(ctx, ro.ProjectDir)
				if err != nil {
					return errors.Errorf("finding source roots: %w", err)
				}
				roots = r
			}

			req := operation.SyncRequest{
				SourceRoots:        roots,
				ProfileNames:       f.profiles,
				DeleteOrphans:      ro.Config.Profiles.Delete,
				ExcludePackageRefs: ro.Config.Profiles.ExcludePackages,
			}
			if cmd.Flags().Changed("delete") {
				req.DeleteOrphans = f.deleteOrphans
			}
			if cmd.Flags().Changed("excludemanaged") {
				req.ExcludePackageRefs = f.excludeManaged
			}

			changes := opts.ConsoleChanges{Console: ro.Console, Kind: "profile"}
			op, err := ro.Operator(ctx, true, changes)
			if err != nil {
				return err
			}

			ro.Console.Header("syncing profiles")
			ro.Console.StartRun(ctx, log.Run{
				Command: "profile sync",
				Source:  ro.RemoteName(),
				Roots:   roots,
			})

			res, err := op.Sync(ctx, req)
			if err != nil {
				ro.Console.EndRun(ctx)
				return errors.Errorf("syncing profiles: %w", err)
			}

			reportKept(ctx, ro, req, res)
			counts := ro.Console.EndRun(ctx)

			switch {
			case counts.Failed > 0:
				ro.Console.Warningf("%d of %d orphaned profiles could not be deleted", counts.Failed, len(res.Deleted))
			case res.Retrieved == 0 && len(res.Removed) == 0:
				ro.Console.Success("profiles are up to date")
			default:
				ro.Console.Successf("retrieved %d profiles", res.Retrieved)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&f.folders, "folder", "f", nil, "package directories holding profiles (default: configured or sfdx-project.json)")
	cmd.Flags().StringSliceVarP(&f.profiles, "profilelist", "n", nil, "only sync these profiles")
	cmd.Flags().BoolVarP(&f.deleteOrphans, "delete", "d", false, "delete local profiles the remote does not know")
	cmd.Flags().BoolVar(&f.excludeManaged, "excludemanaged", false, "drop permissions on managed package components")

	return cmd
}

// reportKept lists orphans left on disk because deletion was not asked for.
func reportKept(ctx context.Context, ro *opts.RootOpts, req operation.SyncRequest, res operation.SyncResult) {
	if req.DeleteOrphans {
		return
	}
	for _, path := range res.Deleted {
		ro.Console.LogChange(ctx, log.Change{
			Name:   profile.NameFromPath(path),
			Path:   filepath.ToSlash(path),
			Kind:   "profile",
			Action: log.ActionSkipped,
		})
	}
	if len(res.Deleted) > 0 {
		ro.Console.Infof("%d profiles are not known remotely, use --delete to remove them", len(res.Deleted))
	}
}
