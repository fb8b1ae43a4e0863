package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/auth"
	authPostgres "github.com/hrmspro/hrms/internal/auth/postgres"
	"github.com/hrmspro/hrms/internal/database"
	"github.com/hrmspro/hrms/internal/resource"
	resourcePostgres "github.com/hrmspro/hrms/internal/resource/postgres"
	"github.com/hrmspro/hrms/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account and a small sample organisation for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("database config: %w", err)
		}

		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gdb, err := database.Gorm(db)
		if err != nil {
			return fmt.Errorf("failed to open gorm session: %w", err)
		}

		ctx := cmd.Context()
		authService := auth.NewService(
			authPostgres.NewRepository(gdb),
			auth.NewJWTTokenGenerator(
				cfg.Security.AccessTokenSecret,
				cfg.Security.RefreshTokenSecret,
				cfg.Security.AccessTokenDuration,
				cfg.Security.RefreshTokenDuration,
			),
			cfg.Security.BCryptCost,
		)

		_, err = authService.Signup(ctx, auth.SignupDTO{FullName: "HR Admin", Email: seedEmail, Password: seedPassword})
		switch {
		case err == nil:
			fmt.Println("Seeded admin user:", seedEmail)
		case errors.Is(err, internal.ErrEmailTaken):
			fmt.Println("admin user already exists:", seedEmail)
		default:
			return fmt.Errorf("failed to seed admin user: %w", err)
		}

		service := resource.NewService(resourcePostgres.NewResourceRepository(db), resource.NewSchemas(), logger.LoggerWrapper())
		existing, err := service.List(ctx, "companies", nil)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			fmt.Println("sample organisation already present; skipping")
			return nil
		}

		if err := seedSample(ctx, service); err != nil {
			return err
		}
		fmt.Println("Sample organisation seeded successfully")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "admin@hrms.local", "admin account email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "admin account password")
}

type seedRow struct {
	resource string
	values   map[string]any
}

// sampleRows reference each other by the ids a fresh database assigns.
var sampleRows = []seedRow{
	{"companies", map[string]any{"name": "Acme Corp", "registration_no": "U72900KA2020", "timezone": "Asia/Kolkata"}},
	{"branches", map[string]any{"company_id": 1, "name": "Bengaluru HQ", "location": "Bengaluru"}},
	{"departments", map[string]any{"branch_id": 1, "name": "Engineering"}},
	{"departments", map[string]any{"branch_id": 1, "name": "People Ops"}},
	{"designations", map[string]any{"title": "Software Engineer", "level": 2, "grade": "E2"}},
	{"designations", map[string]any{"title": "HR Manager", "level": 3, "grade": "M1"}},
	{"employment-types", map[string]any{"type_name": "Full Time"}},
	{"work-locations", map[string]any{"location_type": "Office"}},
	{"shifts", map[string]any{"start_time": "09:00", "end_time": "18:00"}},
	{"employees", map[string]any{"company_id": 1, "dept_id": 2, "designation_id": 2, "emp_type_id": 1, "join_date": "2022-04-01"}},
	{"employees", map[string]any{"company_id": 1, "dept_id": 1, "designation_id": 1, "emp_type_id": 1, "manager_id": 1, "join_date": "2023-07-15"}},
	{"employee-contacts", map[string]any{"emp_id": 1, "phone": "+91 98450 00001", "email": "meera@acme.example"}},
	{"employee-contacts", map[string]any{"emp_id": 2, "phone": "+91 98450 00002", "email": "arjun@acme.example"}},
	{"leave-types", map[string]any{"name": "Annual"}},
	{"leave-types", map[string]any{"name": "Sick"}},
	{"leave-balances", map[string]any{"emp_id": 2, "leave_type_id": 1, "balance": 18}},
	{"leave-balances", map[string]any{"emp_id": 2, "leave_type_id": 2, "balance": 6}},
	{"holidays", map[string]any{"company_id": 1, "holiday_date": "2025-01-26", "name": "Republic Day"}},
	{"salary-components", map[string]any{"name": "Basic", "type": "EARNING"}},
	{"salary-components", map[string]any{"name": "Professional Tax", "type": "DEDUCTION"}},
	{"finance/expenses", map[string]any{"employee_id": 2, "category": "Travel", "amount": 2450.5, "claim_date": "2025-02-03", "description": "Client visit"}},
	{"system-roles", map[string]any{"role_name": "Admin"}},
	{"system-roles", map[string]any{"role_name": "Employee"}},
}

func seedSample(ctx context.Context, service *resource.Service) error {
	for _, row := range sampleRows {
		body, err := json.Marshal(row.values)
		if err != nil {
			return err
		}
		if _, err := service.Create(ctx, row.resource, body); err != nil {
			return fmt.Errorf("failed to seed %s: %w", row.resource, err)
		}
		fmt.Printf("Seeded %s\n", row.resource)
	}
	return nil
}
