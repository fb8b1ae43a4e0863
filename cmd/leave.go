package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/leave"
	"github.com/spf13/cobra"
)

var (
	leaveOutput  string
	leaveRequest leave.Request
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave history, balances and requests for one employee",
}

var leaveHistoryCmd = &cobra.Command{
	Use:   "history <emp_id>",
	Short: "List an employee's leave requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		empID, err := parseID(args[0])
		if err != nil {
			return err
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		rows, err := leave.NewService(deps.api).History(cmd.Context(), empID)
		if err != nil {
			deps.toasts.Error("Failed to load data")
			return err
		}
		if leaveOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), leaveOutput, rows)
		}
		return leaveTable(cmd.OutOrStdout(), rows, "ID\tTYPE\tFROM\tTO\tDAYS\tSTATUS", func(r apiclient.Record) string {
			req := leave.Request{FromDate: catalog.Text(r["from_date"]), ToDate: catalog.Text(r["to_date"])}
			return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%s",
				catalog.Text(r["request_id"]), catalog.Text(r["leave_type"]),
				req.FromDate, req.ToDate, req.Days(), catalog.StatusBadge(r["status"]))
		})
	},
}

var leaveBalancesCmd = &cobra.Command{
	Use:   "balances <emp_id>",
	Short: "Show an employee's leave balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		empID, err := parseID(args[0])
		if err != nil {
			return err
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		rows, err := leave.NewService(deps.api).Balances(cmd.Context(), empID)
		if err != nil {
			deps.toasts.Error("Failed to load data")
			return err
		}
		if leaveOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), leaveOutput, rows)
		}
		return leaveTable(cmd.OutOrStdout(), rows, "TYPE\tBALANCE", func(r apiclient.Record) string {
			return catalog.Text(r["leave_type"]) + "\t" + catalog.Text(r["balance"])
		})
	},
}

var leaveApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply for leave",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		rec, err := leave.NewService(deps.api).Apply(cmd.Context(), leaveRequest)
		if err != nil {
			deps.toasts.Error("Operation failed: " + apiclient.ErrorMessage(err))
			return err
		}
		deps.toasts.Success(fmt.Sprintf("Leave request %s submitted for %d day(s)",
			catalog.Text(rec["request_id"]), leaveRequest.Days()))
		return nil
	},
}

func leaveDecisionCmd(use, status, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <request_id>",
		Short: "Mark a leave request " + verb,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deps, err := newClient(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer deps.Close()

			if _, err := leave.NewService(deps.api).SetStatus(cmd.Context(), id, status); err != nil {
				deps.toasts.Error("Operation failed: " + apiclient.ErrorMessage(err))
				return err
			}
			deps.toasts.Success(fmt.Sprintf("Leave request %d %s", id, verb))
			return nil
		},
	}
}

func leaveTable(w io.Writer, rows []apiclient.Record, header string, line func(apiclient.Record) string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, line(r))
	}
	return tw.Flush()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func init() {
	leaveCmd.PersistentFlags().StringVarP(&leaveOutput, "output", "o", "table", "output format: table, json or yaml")

	leaveApplyCmd.Flags().Int64Var(&leaveRequest.EmpID, "emp", 0, "employee id")
	leaveApplyCmd.Flags().Int64Var(&leaveRequest.LeaveTypeID, "type", 0, "leave type id")
	leaveApplyCmd.Flags().StringVar(&leaveRequest.FromDate, "from", "", "first day, YYYY-MM-DD")
	leaveApplyCmd.Flags().StringVar(&leaveRequest.ToDate, "to", "", "last day, YYYY-MM-DD")

	leaveCmd.AddCommand(
		leaveHistoryCmd,
		leaveBalancesCmd,
		leaveApplyCmd,
		leaveDecisionCmd("approve", leave.StatusApproved, "approved"),
		leaveDecisionCmd("reject", leave.StatusRejected, "rejected"),
	)
}
