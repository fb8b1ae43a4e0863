package cmd

import (
	"fmt"
	"net/http"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the API server, its version and the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer deps.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api:     %s\n", deps.api.BaseURL())
		fmt.Fprintf(out, "client:  %s\n", internal.Version)

		health, err := deps.api.Health(cmd.Context())
		if err != nil && !apiclient.IsStatus(err, http.StatusServiceUnavailable) {
			deps.toasts.Error("Server unreachable: " + apiclient.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(out, "health:  %s\n", health.Status)
		for name, c := range health.Components {
			fmt.Fprintf(out, "  %s: %v\n", name, c["status"])
		}

		version, err := deps.api.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "server:  %s\n", version.Version)
		if err := apiclient.CheckCompatible(version.Version); err != nil {
			deps.toasts.Warning(err.Error())
		}

		if u, ok := deps.session.User(); ok {
			fmt.Fprintf(out, "session: %s (%s)\n", u.Email, deps.session.State())
		} else {
			fmt.Fprintln(out, "session: signed out")
		}
		return nil
	},
}
