package commands

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/walteh/forcesync/cmd/forcesync/opts"
	"github.com/walteh/forcesync/pkg/classify"
	"github.com/walteh/forcesync/pkg/log"
	"github.com/walteh/forcesync/pkg/metadata"
	"gitlab.com/tozd/go/errors"
)

// NewSourceCmd creates the source command group
func NewSourceCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Classify and copy source components",
	}

	cmd.AddCommand(
		newSourceListCmd(ro),
		newSourceCopyCmd(ro),
	)
	return cmd
}

func newSourceListCmd(ro *opts.RootOpts) *cobra.Command {
	var path, typeName string
	var customOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the components below a directory by metadata type",
		Example: `  forcesync source list --path force-app
  forcesync source list --path force-app --type ApexClass
  forcesync source list --path force-app --type CustomField --custom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := ro.Operator(ctx, false, nil)
			if err != nil {
				return err
			}

			components, err := op.ListSource(ctx, path, typeName)
			if err != nil {
				return errors.Errorf("listing source: %w", err)
			}

			if customOnly {
				components = slices.DeleteFunc(components, func(c classify.Component) bool {
					return !metadata.IsCustomComponent(c.Path, c.Type)
				})
			}

			if len(components) == 0 {
				ro.Console.Warningf("No components found in %s", path)
				return nil
			}

			rows := make([][]string, 0, len(components))
			for _, c := range components {
				rows = append(rows, []string{c.Type, c.Name, relativeTo(ro.ProjectDir, c.Path)})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Type", "Name", "Path"}, rows, "files"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "directory to classify")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "only list this metadata type")
	cmd.Flags().BoolVar(&customOnly, "custom", false, "leave out standard fields and objects")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newSourceCopyCmd(ro *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "copy FILE...",
		Short: "Copy files with the bundles they belong to",
		Long: `Copy writes each file below the output directory, keeping its path. Files of
bundle types such as Lightning web components bring the whole bundle along,
and metadata files their companion source.`,
		Example: `  forcesync source copy --output build force-app/main/default/classes/Foo.cls`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dst := output
			if !filepath.IsAbs(dst) {
				dst = filepath.Join(ro.ProjectDir, dst)
			}

			changes := opts.ConsoleChanges{Console: ro.Console, Kind: "source"}
			op, err := ro.Operator(ctx, false, changes)
			if err != nil {
				return err
			}

			out := relativeTo(ro.ProjectDir, dst)
			ro.Console.Header(fmt.Sprintf("copying %d files", len(args)))
			ro.Console.StartRun(ctx, log.Run{
				Command: "source copy",
				Source:  "project",
				Roots:   []string{out},
			})

			copied, err := op.Copy(ctx, args, dst)
			ro.Console.EndRun(ctx)
			if err != nil {
				return errors.Errorf("copying source: %w", err)
			}

			ro.Console.Successf("copied %d files to %s", len(copied), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to copy into")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// relativeTo shows path relative to base when it lies below it.
func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || !filepath.IsLocal(rel) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
