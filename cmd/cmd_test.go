package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CLI Suite")
}

func resetFlags() {
	configPath, apiURL, verbose = "", "", false
	authEmail, authPassword, authFullName, whoamiOutput = "", "", "", "table"
	listSearch, listSort, listDesc, listPage, listFilters, listOutput = "", "", false, 1, nil, "table"
	showOutput, setValues, assumeYes, exportDir, pagesOut = "table", nil, false, "", "table"
	leaveOutput, leaveRequest = "table", leave.Request{}
	dashboardOutput, financeEmployee = "table", 0
}

var _ = Describe("hrms CLI", func() {
	var (
		dir        string
		configFile string
		stdin      string
	)

	run := func(args ...string) (string, error) {
		resetFlags()
		var out, errOut bytes.Buffer
		rootCmd.SetArgs(append([]string{"--config", configFile}, args...))
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&errOut)
		rootCmd.SetIn(strings.NewReader(stdin))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	mustRun := func(args ...string) string {
		out, err := run(args...)
		ExpectWithOffset(1, err).NotTo(HaveOccurred(), strings.Join(args, " "))
		return out
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdin = ""

		server := &internal.Config{
			Database: internal.DatabaseConfig{Driver: "sqlite3", Source: filepath.Join(dir, "hrms.db")},
			Security: internal.SecurityConfig{
				AccessTokenSecret:    "access-secret-for-tests-0123456789",
				RefreshTokenSecret:   "refresh-secret-for-tests-0123456789",
				AccessTokenDuration:  time.Hour,
				RefreshTokenDuration: 2 * time.Hour,
				BCryptCost:           4,
				RequireAuth:          true,
				AuthRatePerMinute:    600,
				AuthRateBurst:        100,
			},
			Server: internal.ServerConfig{AllowedOrigins: "*"},
		}
		autoMigrate = true
		DeferCleanup(func() { autoMigrate = false })

		deps, err := initializeDependencies(context.Background(), server)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(deps.DB.Close)

		srv := httptest.NewServer(deps.Router)
		DeferCleanup(srv.Close)

		configFile = filepath.Join(dir, "config.yml")
		Expect(os.WriteFile(configFile, []byte(fmt.Sprintf(`client:
  api_base_url: %s
  session_file: %s
  export_dir: %s
  request_timeout: 10s
`, srv.URL, filepath.Join(dir, "session.json"), dir)), 0o600)).To(Succeed())
	})

	signup := func() {
		mustRun("signup", "--name", "Meera Rao", "--email", "meera@acme.example", "--password", "secret123")
	}

	It("reads config files and applies the --api override", func() {
		_, err := run("pages", "--api", "http://override.example:9000")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Client.APIBaseURL).To(Equal("http://override.example:9000"))
		Expect(cfg.Client.ExportDir).To(Equal(dir))
		Expect(cfg.Client.RequestTimeout).To(Equal(10 * time.Second))
	})

	It("requires a session for data commands", func() {
		_, err := run("list", "companies")
		Expect(err).To(MatchError(errNotLoggedIn))
	})

	It("signs up, remembers the session and signs out", func() {
		signup()

		out := mustRun("whoami")
		Expect(out).To(ContainSubstring("[M] Meera Rao <meera@acme.example>"))

		out = mustRun("status")
		Expect(out).To(ContainSubstring("health:  healthy"))
		Expect(out).To(ContainSubstring("server:  " + internal.Version))
		Expect(out).To(ContainSubstring("session: meera@acme.example (authenticated)"))

		mustRun("logout")
		_, err := run("whoami")
		Expect(err).To(MatchError(errNotLoggedIn))
	})

	It("reports a failed login", func() {
		_, err := run("login", "--email", "nobody@acme.example", "--password", "wrongpass")
		Expect(err).To(HaveOccurred())
	})

	It("prompts for missing credentials", func() {
		signup()
		mustRun("logout")

		stdin = "meera@acme.example\nsecret123\n"
		mustRun("login")
		Expect(mustRun("whoami", "-o", "json")).To(ContainSubstring(`"email": "meera@acme.example"`))
	})

	It("runs the create, list, update, show, delete cycle", func() {
		signup()

		Expect(mustRun("list", "companies")).To(ContainSubstring("No records found"))

		mustRun("create", "companies", "--set", "name=Acme", "--set", "timezone=Asia/Kolkata")
		mustRun("create", "companies", "--set", "name=Globex")

		out := mustRun("list", "companies", "-o", "json")
		var rows []map[string]any
		Expect(json.Unmarshal([]byte(out), &rows)).To(Succeed())
		Expect(rows).To(HaveLen(2))

		out = mustRun("list", "companies", "--search", "glob")
		Expect(out).To(ContainSubstring("Globex"))
		Expect(out).NotTo(ContainSubstring("Acme"))
		Expect(out).To(ContainSubstring("1 records"))

		mustRun("update", "companies", "1", "--set", "registration_no=REG-1")
		out = mustRun("show", "companies", "1")
		Expect(out).To(ContainSubstring("REG-1"))
		Expect(out).To(ContainSubstring("Asia/Kolkata"))

		stdin = "n\n"
		mustRun("delete", "companies", "2")
		Expect(mustRun("list", "companies", "-o", "json")).To(ContainSubstring("Globex"))

		stdin = "y\n"
		mustRun("delete", "companies", "2")
		Expect(mustRun("list", "companies", "-o", "json")).NotTo(ContainSubstring("Globex"))
	})

	It("refuses a create with missing required fields", func() {
		signup()
		_, err := run("create", "branches", "--set", "name=HQ")
		Expect(err).To(HaveOccurred())
	})

	It("exports the filtered rows to CSV", func() {
		signup()
		mustRun("create", "companies", "--set", "name=Acme")

		out := mustRun("export", "companies")
		path := strings.TrimSpace(out)
		Expect(path).To(Equal(filepath.Join(dir, "companies_export.csv")))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("ID,Name"))
		Expect(string(data)).To(ContainSubstring("Acme"))
	})

	It("applies for leave and lists the history", func() {
		signup()
		mustRun("create", "companies", "--set", "name=Acme")
		mustRun("create", "branches", "--set", "company_id=1", "--set", "name=HQ")
		mustRun("create", "departments", "--set", "branch_id=1", "--set", "name=Ops")
		mustRun("create", "employees", "--set", "company_id=1", "--set", "dept_id=1")
		mustRun("create", "leave-types", "--set", "name=Annual")

		mustRun("leave", "apply", "--emp", "1", "--type", "1", "--from", "2025-03-03", "--to", "2025-03-05")
		mustRun("leave", "approve", "1")

		out := mustRun("leave", "history", "1")
		Expect(out).To(ContainSubstring("Annual"))
		Expect(out).To(ContainSubstring("APPROVED"))
		Expect(out).To(MatchRegexp(`2025-03-05\s+3\s`))

		_, err := run("leave", "apply", "--emp", "1", "--type", "1", "--from", "2025-03-05", "--to", "2025-03-01")
		Expect(err).To(MatchError(ContainSubstring("To Date must not be before From Date")))
	})

	It("shows the dashboard and finance summary", func() {
		signup()
		Expect(mustRun("dashboard")).To(ContainSubstring("Welcome, Meera Rao"))
		Expect(mustRun("finance", "summary")).To(ContainSubstring("0 claims totalling 0.00"))
	})

	It("lists pages as yaml", func() {
		out := mustRun("pages", "organization", "-o", "yaml")
		Expect(out).To(ContainSubstring("resource: companies"))
	})
})

var _ = Describe("helpers", func() {
	It("parses key=value assignments", func() {
		got, err := parseAssignments([]string{"name=Acme", "note=a=b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(map[string]string{"name": "Acme", "note": "a=b"}))

		_, err = parseAssignments([]string{"oops"})
		Expect(err).To(HaveOccurred())
	})

	It("treats anything but yes as a refusal", func() {
		var out bytes.Buffer
		ok, err := confirm(bufio.NewReader(strings.NewReader("yes\n")), &out, "Sure?")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(out.String()).To(Equal("Sure? [y/N]: "))

		ok, _ = confirm(bufio.NewReader(strings.NewReader("")), &out, "Sure?")
		Expect(ok).To(BeFalse())
	})

	It("reads successive prompts from one buffered input", func() {
		var out bytes.Buffer
		in := bufio.NewReader(strings.NewReader("meera@acme.example\nsecret123\n"))
		email, err := prompt(in, &out, "Email: ")
		Expect(err).NotTo(HaveOccurred())
		password, err := prompt(in, &out, "Password: ")
		Expect(err).NotTo(HaveOccurred())

		Expect(email).To(Equal("meera@acme.example"))
		Expect(password).To(Equal("secret123"))
		Expect(out.String()).To(Equal("Email: Password: "))
	})

	It("rejects unknown output formats", func() {
		Expect(writeOutput(&bytes.Buffer{}, "xml", 1)).To(HaveOccurred())
	})
})
