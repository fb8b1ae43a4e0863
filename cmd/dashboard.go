package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/finance"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	dashboardOutput string
	financeEmployee int64
)

var amounts = message.NewPrinter(language.English)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's headcount, attendance and leave figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		stats, err := deps.api.Dashboard(cmd.Context())
		if err != nil {
			deps.toasts.Error("Failed to load data")
			return err
		}
		if dashboardOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), dashboardOutput, stats)
		}

		u, _ := deps.session.User()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome, %s\n\n", u.Name)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		amounts.Fprintf(tw, "Total employees\t%d\n", stats.TotalEmployees)
		amounts.Fprintf(tw, "Active employees\t%d\n", stats.ActiveEmployees)
		amounts.Fprintf(tw, "Present today\t%d\n", stats.PresentToday)
		amounts.Fprintf(tw, "On leave today\t%d\n", stats.OnLeaveToday)
		return tw.Flush()
	},
}

var financeCmd = &cobra.Command{
	Use:   "finance",
	Short: "Expense claim reporting",
}

var financeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total expense claims by status and category",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		sum, err := finance.NewService(deps.api).Summary(cmd.Context(), financeEmployee)
		if err != nil {
			deps.toasts.Error("Failed to load data: " + apiclient.ErrorMessage(err))
			return err
		}
		if dashboardOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), dashboardOutput, sum)
		}

		out := cmd.OutOrStdout()
		amounts.Fprintf(out, "%d claims totalling %.2f\n", sum.Claims, sum.Total)
		for _, section := range []struct {
			title   string
			buckets []finance.Bucket
		}{{"STATUS", sum.ByStatus}, {"CATEGORY", sum.ByCategory}} {
			if len(section.buckets) == 0 {
				continue
			}
			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "%s\tCLAIMS\tAMOUNT\t\n", section.title)
			for _, b := range section.buckets {
				amounts.Fprintf(tw, "%s\t%d\t%.2f\t\n", b.Key, b.Count, b.Amount)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{dashboardCmd, financeCmd} {
		c.PersistentFlags().StringVarP(&dashboardOutput, "output", "o", "table", "output format: table, json or yaml")
	}
	financeSummaryCmd.Flags().Int64Var(&financeEmployee, "emp", 0, "only claims of this employee id")
	financeCmd.AddCommand(financeSummaryCmd)
}
