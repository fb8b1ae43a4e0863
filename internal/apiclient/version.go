package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hrmspro/hrms/internal"
)

type VersionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type DashboardStats struct {
	TotalEmployees  int `json:"total_employees"`
	ActiveEmployees int `json:"active_employees"`
	PresentToday    int `json:"present_today"`
	OnLeaveToday    int `json:"on_leave_today"`
}

type Health struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Components map[string]map[string]any `json:"components"`
}

func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var out VersionInfo
	err := c.Do(ctx, http.MethodGet, "/api/version", nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.Do(ctx, http.MethodGet, "/api/health", nil, &out)
	if IsStatus(err, http.StatusServiceUnavailable) {
		out.Status = "unhealthy"
	}
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	err := c.Do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &out)
	return out, err
}

// CheckCompatible fails when server speaks a different major version
// than this client, or an older minor one.
func CheckCompatible(server string) error {
	serverVersion, err := semver.NewVersion(strings.TrimPrefix(server, "v"))
	if err != nil {
		return fmt.Errorf("invalid server version %q: %w", server, err)
	}
	client := semver.MustParse(internal.Version)

	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d.%d.0", client.Major(), client.Minor()))
	if err != nil {
		return err
	}
	if !constraint.Check(serverVersion) {
		return fmt.Errorf("server version %s is not compatible with client %s", serverVersion, client)
	}
	return nil
}
