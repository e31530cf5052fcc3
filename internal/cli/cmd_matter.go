package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

// newMatterCmd creates the matter command group
func newMatterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matter",
		Short: "Create and inspect matters",
	}
	cmd.AddCommand(newMatterCreateCmd())
	cmd.AddCommand(newMatterListCmd())
	cmd.AddCommand(newMatterShowCmd())
	cmd.AddCommand(newMatterDepsCmd())
	cmd.AddCommand(newMatterRepairCmd())
	return cmd
}

func newMatterCreateCmd() *cobra.Command {
	var (
		clientName string
		clientID   string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "create [matter-id]",
		Short: "Create a matter seeded with the default workflow",
		Long: `Create a matter seeded with the five default tasks.

With --client the matter is filed under a client from the directory; the
client name defaults to the directory entry and the matter id is generated
when omitted.

Example:
  finch matter create m1 --client-name "Jane Doe"
  finch matter create --client jane_doe --name "Rear-end collision"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateMatterRequest{
				ClientName: clientName,
				MatterName: name,
			}
			if len(args) == 1 {
				req.MatterID = args[0]
			}
			if clientID == "" {
				if req.MatterID == "" {
					return fincherrors.ErrInvalidInput("matter-id", "is required unless --client is set")
				}
				if req.ClientName == "" {
					return fincherrors.ErrInvalidInput("client-name", "is required unless --client is set")
				}
			}

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			var status matter.Status
			if clientID != "" {
				status, err = svc.CreateMatterForClient(cmd.Context(), clientID, req)
			} else {
				status, err = svc.CreateMatter(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, status)
			}
			fmt.Fprintf(out, "Created matter %s for %s with %d tasks\n", status.MatterID, status.ClientName, status.TotalTasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientName, "client-name", "", "client name")
	cmd.Flags().StringVar(&clientID, "client", "", "file the matter under this client id")
	cmd.Flags().StringVar(&name, "name", "", "matter name")
	return cmd
}

func newMatterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List matters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			matters, err := svc.ListMatters(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, matters)
			}
			if len(matters) == 0 {
				fmt.Fprintln(out, "No matters found. Create one with: finch matter create <id> --client-name <name>")
				return nil
			}
			printMatterTable(out, matters)
			return nil
		},
	}
}

// printMatterTable prints matter summaries in table format.
func printMatterTable(out io.Writer, matters []matter.Summary) {
	w := newTable(out)
	fmt.Fprintln(w, "MATTER\tCLIENT\tNAME\tPROGRESS\tCREATED")
	fmt.Fprintln(w, "──────\t──────\t────\t────────\t───────")
	for _, m := range matters {
		name := m.MatterName
		if name == "" {
			name = "-"
		}
		created := m.CreatedDate
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			m.MatterID, truncate(m.ClientName, 30), truncate(name, 30),
			m.CompletedTasks, m.TotalTasks, formatDate(&created))
	}
	_ = w.Flush()
}

func newMatterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <matter-id>",
		Short: "Show task states for a matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			status, err := svc.MatterStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, status)
			}

			fmt.Fprintf(out, "Matter %s (%s)\n", status.MatterID, status.ClientName)
			if status.MatterName != "" {
				fmt.Fprintf(out, "Name: %s\n", status.MatterName)
			}
			fmt.Fprintf(out, "Progress: %d/%d tasks complete\n\n", status.CompletedTasks, status.TotalTasks)

			w := newTable(out)
			fmt.Fprintln(w, "TASK\tNAME\tCOMPLETED\tSTATE")
			fmt.Fprintln(w, "────\t────\t─────────\t─────")
			for _, id := range status.TaskOrder {
				ts := status.Tasks[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, truncate(ts.Name, 40), formatDate(ts.CompletionDate), stateLabel(out, ts.State))
			}
			return w.Flush()
		},
	}
}

func newMatterDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <matter-id>",
		Short: "Show every task's dependencies and whether they are met",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			report, err := svc.DependencyDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, report)
			}

			for i, id := range report.TaskOrder {
				if i > 0 {
					fmt.Fprintln(out)
				}
				ts := report.Tasks[id]
				fmt.Fprintf(out, "%s (%s)  %s\n", ts.Name, id, stateLabel(out, ts.State))
				deps := report.Dependencies[id]
				if len(deps) == 0 {
					fmt.Fprintln(out, "  no dependencies")
					continue
				}
				for _, d := range deps {
					line := fmt.Sprintf("  %s %s", metLabel(out, d.IsMet), d.Description)
					if d.AvailableAt != nil && !d.IsMet {
						line += fmt.Sprintf(" (available %s)", formatDate(d.AvailableAt))
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

func newMatterRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <matter-id>",
		Short: "Re-add any missing default tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			added, err := svc.RepairDefaults(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if added == nil {
					added = []string{}
				}
				return printJSON(out, map[string]any{"matterId": args[0], "addedTasks": added})
			}
			if len(added) == 0 {
				fmt.Fprintln(out, "All default tasks already exist")
				return nil
			}
			fmt.Fprintf(out, "Added %d default task(s) to %s:\n", len(added), args[0])
			for _, id := range added {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
}
