package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/forcesync/cmd/forcesync/opts"
	"gitlab.com/tozd/go/errors"
)

// NewApexTestCmd creates the apextest command group
func NewApexTestCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apextest",
		Short: "Work with Apex test classes",
	}

	cmd.AddCommand(newApexTestListCmd(ro))
	return cmd
}

type apexTestListFlags struct {
	path           string
	resultAsString bool
	asJSON         bool
}

func newApexTestListCmd(ro *opts.RootOpts) *cobra.Command {
	f := &apexTestListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the Apex test classes below a directory",
		Long: `List scans a directory for Apex classes and prints the names of the ones
annotated as tests. Files excluded by the ignore file are not scanned.`,
		Example: `  forcesync apextest list --path force-app
  forcesync apextest list --path force-app --resultasstring`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := ro.Operator(ctx, false, nil)
			if err != nil {
				return err
			}

			tests, err := op.ListTests(ctx, f.path)
			if err != nil {
				return errors.Errorf("listing apex tests: %w", err)
			}

			names := make([]string, 0, len(tests))
			for _, c := range tests {
				names = append(names, c.Name)
			}

			out := cmd.OutOrStdout()

			if f.asJSON {
				var result any = names
				if f.resultAsString {
					result = strings.Join(names, ",")
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{"result": result}); err != nil {
					return errors.Errorf("encoding result: %w", err)
				}
				return nil
			}

			if len(tests) == 0 {
				ro.Console.Warningf("No apex test classes found in %s", f.path)
				return nil
			}

			ro.Console.Infof("Found %d apex test classes in %s", len(tests), f.path)

			rows := make([][]string, 0, len(tests))
			for _, c := range tests {
				rows = append(rows, []string{c.Name, relativeTo(ro.ProjectDir, c.FilePath)})
			}
			fmt.Fprint(out, renderTable([]string{"Name", "File"}, rows, "classes"))

			if f.resultAsString {
				fmt.Fprintln(out, strings.Join(names, ","))
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.path, "path", "p", "", "directory to scan")
	cmd.Flags().BoolVar(&f.resultAsString, "resultasstring", false, "print the names as one comma separated string")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print only the result as JSON")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
