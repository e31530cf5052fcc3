package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// newTaskCmd creates the task command group
func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, run and rewire tasks",
		Long: `Create, run and rewire tasks within a matter.

Dependencies are given with --requires <task-id> (the task must be complete)
and --wait <task-id>:<weeks> (the task must have been complete for that many
weeks). Requires entries come first in the resulting list.`,
	}
	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskRunCmd())
	cmd.AddCommand(newTaskAddDepCmd())
	cmd.AddCommand(newTaskSetDepsCmd())
	cmd.AddCommand(newTaskInsertAfterCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var requires, waits []string

	cmd := &cobra.Command{
		Use:   "create <matter-id> <task-id> <name>",
		Short: "Add a task to a matter",
		Example: `  finch task create m1 file_suit "File Suit" --wait create_demand:4
  finch task create m1 deposition "Deposition" --requires file_suit`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseDependencies(requires, waits)
			if err != nil {
				return err
			}

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			task, err := svc.CreateTask(cmd.Context(), args[0], args[1], args[2], deps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, task)
			}
			fmt.Fprintf(out, "Created task %s (%s) with %d dependencies\n", task.ID, task.Name, len(task.Dependencies))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&requires, "requires", nil, "task id that must be complete (repeatable)")
	cmd.Flags().StringArrayVar(&waits, "wait", nil, "task-id:weeks waiting period (repeatable)")
	return cmd
}

func newTaskRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "run <matter-id> <task-id>",
		Aliases: []string{"execute"},
		Short:   "Complete a task if its dependencies are met",
		Long: `Complete a task if its dependencies are met.

A task that is not ready is left unchanged and its unmet dependencies are
listed. Running an already completed task is a no-op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			res, err := svc.ExecuteTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, res)
			}
			printExecuteResult(out, res)
			return nil
		},
	}
}

// printExecuteResult prints the outcome and any unmet dependencies.
func printExecuteResult(out io.Writer, res matter.ExecuteResult) {
	if res.Outcome == matter.OutcomeNotReady {
		fmt.Fprintf(out, "Task %q not ready\n", res.TaskName)
		for _, u := range res.UnmetDependencies {
			fmt.Fprintf(out, "  %s %s\n", metLabel(out, false), u)
		}
		return
	}
	fmt.Fprintln(out, res.Message)
	if res.Executed && res.CompletionDate != nil {
		fmt.Fprintf(out, "Completed at %s\n", formatDate(res.CompletionDate))
	}
}

func newTaskAddDepCmd() *cobra.Command {
	var requires, waits []string

	cmd := &cobra.Command{
		Use:   "add-dep <matter-id> <task-id>",
		Short: "Append one dependency to a task",
		Example: `  finch task add-dep m1 create_demand --requires client_checkin
  finch task add-dep m1 create_demand --wait intake_call:6`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseDependencies(requires, waits)
			if err != nil {
				return err
			}
			if len(deps) != 1 {
				return fincherrors.ErrInvalidInput("dependency", "give exactly one --requires or --wait")
			}

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			task, err := svc.AddDependency(cmd.Context(), args[0], args[1], deps[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, task)
			}
			fmt.Fprintf(out, "Added dependency on %s to %s (%d total)\n", deps[0].TargetTaskID, task.ID, len(task.Dependencies))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&requires, "requires", nil, "task id that must be complete")
	cmd.Flags().StringArrayVar(&waits, "wait", nil, "task-id:weeks waiting period")
	return cmd
}

func newTaskSetDepsCmd() *cobra.Command {
	var (
		requires, waits []string
		clearAll        bool
	)

	cmd := &cobra.Command{
		Use:   "set-deps <matter-id> <task-id>",
		Short: "Replace a task's dependency list",
		Long: `Replace a task's dependency list.

Every target must exist. Use --clear to remove all dependencies.`,
		Example: `  finch task set-deps m1 create_demand --requires collect_medical_records --wait client_checkin:1
  finch task set-deps m1 create_demand --clear`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseDependencies(requires, waits)
			if err != nil {
				return err
			}
			if len(deps) == 0 && !clearAll {
				return fincherrors.ErrInvalidInput("dependencies", "give --requires/--wait, or --clear to remove all")
			}
			if len(deps) > 0 && clearAll {
				return fincherrors.ErrInvalidInput("clear", "cannot be combined with --requires or --wait")
			}

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			task, err := svc.ReplaceDependencies(cmd.Context(), args[0], args[1], deps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, task)
			}
			fmt.Fprintf(out, "Dependencies updated for %s (%s)\n", task.ID, task.Name)
			for _, d := range task.Dependencies {
				fmt.Fprintf(out, "  %s\n", describeDependency(d))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&requires, "requires", nil, "task id that must be complete (repeatable)")
	cmd.Flags().StringArrayVar(&waits, "wait", nil, "task-id:weeks waiting period (repeatable)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every dependency")
	return cmd
}

func newTaskInsertAfterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert-after <matter-id> <after-task-id> <new-task-id> <new-task-name>",
		Short: "Splice a new task into the chain after an existing task",
		Long: `Splice a new task into the chain after an existing task.

The new task depends on <after-task-id>. Every dependency that targeted
<after-task-id>, including waiting periods, now targets the new task.`,
		Example: `  finch task insert-after m1 sign_engagement conflict_check "Conflict Check"`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			res, err := svc.InsertTaskAfter(cmd.Context(), args[0], args[2], args[3], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Inserted %s (%s) after %s\n", res.Task.ID, res.Task.Name, res.After.ID)
			if res.RewiredCount == 0 {
				fmt.Fprintln(out, "No tasks rewired")
				return nil
			}
			fmt.Fprintf(out, "Rewired %d task(s): %s\n", res.RewiredCount, strings.Join(res.RewiredTaskIDs, ", "))
			return nil
		},
	}
}

// describeDependency renders a dependency the way it is given on the
// command line.
func describeDependency(d matter.Dependency) string {
	if d.Kind == matter.KindTimeBased {
		return fmt.Sprintf("wait %s:%d", d.TargetTaskID, d.Weeks())
	}
	return "requires " + d.TargetTaskID
}
