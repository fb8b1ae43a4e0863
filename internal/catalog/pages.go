package catalog

func col(key, label string) Column { return Column{Key: key, Label: label} }

func badge(key, label string) Column {
	return Column{Key: key, Label: label, Badge: true, Render: StatusBadge}
}

func text(key, label string) Field  { return Field{Key: key, Label: label, Type: FieldText} }
func num(key, label string) Field   { return Field{Key: key, Label: label, Type: FieldNumber} }
func date(key, label string) Field  { return Field{Key: key, Label: label, Type: FieldDate} }
func clock(key, label string) Field { return Field{Key: key, Label: label, Type: FieldTime} }
func stamp(key, label string) Field { return Field{Key: key, Label: label, Type: FieldDateTime} }
func email(key, label string) Field { return Field{Key: key, Label: label, Type: FieldEmail} }

func choice(key, label string, options ...string) Field {
	return Field{Key: key, Label: label, Type: FieldSelect, Options: options}
}

func (f Field) required() Field            { f.Required = true; return f }
func (f Field) decimal() Field             { f.Decimal = true; return f }
func (f Field) ref(table string) Field     { f.Ref = table; return f }
func (f Field) hint(p string) Field        { f.Placeholder = p; return f }
func (f Field) withDefault(v string) Field { f.Default = v; return f }

func employeeRef(key, label string) Field { return num(key, label).required().ref("employees") }

var pages = []Page{
	{
		Slug:        "employees",
		Title:       "Employees",
		Description: "Manage employee records, contacts, documents, and more",
		Tabs: []Tab{
			{
				Title: "Employees", Resource: "employees", Table: "employees", PK: "emp_id",
				Columns: []Column{col("emp_id", "ID"), col("company_id", "Company"), col("dept_id", "Department"), col("designation_id", "Designation"), col("join_date", "Join Date"), badge("status", "Status")},
				Fields: []Field{
					num("company_id", "Company ID").required().ref("companies"),
					num("dept_id", "Department ID").required().ref("departments"),
					num("designation_id", "Designation ID").ref("designations"),
					num("emp_type_id", "Employment Type ID").ref("employment_types"),
					num("manager_id", "Manager ID").ref("employees"),
					date("join_date", "Join Date"),
					text("status", "Status").hint("ACTIVE / INACTIVE").withDefault("ACTIVE"),
				},
			},
			{
				Title: "Personal Details", Resource: "employee-personal-details", Table: "personal_details", PK: "emp_id", NaturalKey: true,
				Columns: []Column{col("emp_id", "Emp ID"), col("dob", "Date of Birth"), col("gender", "Gender"), col("marital_status", "Marital Status")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), date("dob", "Date of Birth"), text("gender", "Gender"), text("marital_status", "Marital Status")},
			},
			{
				Title: "Contacts", Resource: "employee-contacts", Table: "contacts", PK: "contact_id",
				Columns: []Column{col("contact_id", "ID"), col("emp_id", "Emp ID"), col("phone", "Phone"), col("email", "Email")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("phone", "Phone"), email("email", "Email")},
			},
			{
				Title: "Addresses", Resource: "employee-addresses", Table: "addresses", PK: "address_id",
				Columns: []Column{col("address_id", "ID"), col("emp_id", "Emp ID"), col("address_type", "Type"), col("address", "Address")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("address_type", "Address Type").hint("HOME / OFFICE"), text("address", "Address")},
			},
			{
				Title: "Documents", Resource: "employee-documents", Table: "documents", PK: "doc_id",
				Columns: []Column{col("doc_id", "ID"), col("emp_id", "Emp ID"), col("doc_type", "Doc Type"), col("file_path", "File Path")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("doc_type", "Document Type"), text("file_path", "File Path")},
			},
			{
				Title: "Bank Details", Resource: "employee-bank-details", Table: "bank_details", PK: "bank_id",
				Columns: []Column{col("bank_id", "ID"), col("emp_id", "Emp ID"), col("account_no", "Account No"), col("ifsc", "IFSC")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("account_no", "Account Number"), text("ifsc", "IFSC Code")},
			},
			{
				Title: "Salary Structure", Resource: "employee-salary-structure", Table: "salary_structure", PK: "salary_id",
				Columns: []Column{col("salary_id", "ID"), col("emp_id", "Emp ID"), col("basic", "Basic"), col("hra", "HRA"), col("allowances", "Allowances")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("basic", "Basic").decimal(), num("hra", "HRA").decimal(), num("allowances", "Allowances").decimal()},
			},
			{
				Title: "Status History", Resource: "employee-status-history", Table: "status_history", PK: "status_id",
				Columns: []Column{col("status_id", "ID"), col("emp_id", "Emp ID"), badge("status", "Status"), col("changed_at", "Changed At")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("status", "Status")},
			},
		},
	},
	{
		Slug:        "organization",
		Title:       "Organization",
		Description: "Manage companies, branches, departments, and more",
		Tabs: []Tab{
			{
				Title: "Companies", Resource: "companies", Table: "companies", PK: "company_id",
				Columns: []Column{col("company_id", "ID"), col("name", "Name"), col("registration_no", "Reg No."), col("timezone", "Timezone")},
				Fields:  []Field{text("name", "Company Name").required(), text("registration_no", "Registration No."), text("timezone", "Timezone").hint("e.g. Asia/Kolkata")},
			},
			{
				Title: "Branches", Resource: "branches", Table: "branches", PK: "branch_id",
				Columns: []Column{col("branch_id", "ID"), col("company_id", "Company ID"), col("name", "Branch Name"), col("location", "Location")},
				Fields:  []Field{num("company_id", "Company ID").required().ref("companies"), text("name", "Branch Name").required(), text("location", "Location")},
			},
			{
				Title: "Departments", Resource: "departments", Table: "departments", PK: "dept_id",
				Columns: []Column{col("dept_id", "ID"), col("branch_id", "Branch ID"), col("name", "Department")},
				Fields:  []Field{num("branch_id", "Branch ID").required().ref("branches"), text("name", "Department Name").required()},
			},
			{
				Title: "Designations", Resource: "designations", Table: "designations", PK: "designation_id",
				Columns: []Column{col("designation_id", "ID"), col("title", "Title"), col("level", "Level"), col("grade", "Grade")},
				Fields:  []Field{text("title", "Title").required(), num("level", "Level"), text("grade", "Grade")},
			},
			{
				Title: "Employment Types", Resource: "employment-types", Table: "employment_types", PK: "emp_type_id",
				Columns: []Column{col("emp_type_id", "ID"), col("type_name", "Type Name")},
				Fields:  []Field{text("type_name", "Type Name").required()},
			},
			{
				Title: "Work Locations", Resource: "work-locations", Table: "work_locations", PK: "location_id",
				Columns: []Column{col("location_id", "ID"), col("location_type", "Location Type")},
				Fields:  []Field{text("location_type", "Location Type").required()},
			},
			{
				Title: "Shifts", Resource: "shifts", Table: "shifts", PK: "shift_id",
				Columns: []Column{col("shift_id", "ID"), col("start_time", "Start Time"), col("end_time", "End Time")},
				Fields:  []Field{clock("start_time", "Start Time").required(), clock("end_time", "End Time").required()},
			},
		},
	},
	{
		Slug:        "attendance",
		Title:       "Attendance & Leave",
		Description: "Track attendance, manage leave requests and holidays",
		Tabs: []Tab{
			{
				Title: "Attendance", Resource: "attendance", Table: "attendance", PK: "attendance_id",
				Columns: []Column{col("attendance_id", "ID"), col("emp_id", "Emp ID"), col("attendance_date", "Date"), col("check_in", "Check In"), col("check_out", "Check Out")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), date("attendance_date", "Date").required(), stamp("check_in", "Check In"), stamp("check_out", "Check Out")},
			},
			{
				Title: "Logs", Resource: "attendance-logs", Table: "attendance_logs", PK: "log_id",
				Columns: []Column{col("log_id", "ID"), col("emp_id", "Emp ID"), col("log_time", "Log Time")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), stamp("log_time", "Log Time")},
			},
			{
				Title: "Leave Types", Resource: "leave-types", Table: "leave_types", PK: "leave_type_id",
				Columns: []Column{col("leave_type_id", "ID"), col("name", "Name")},
				Fields:  []Field{text("name", "Leave Type Name").required()},
			},
			{
				Title: "Leave Balances", Resource: "leave-balances", Table: "leave_balances", PK: "balance_id",
				Columns: []Column{col("balance_id", "ID"), col("emp_id", "Emp ID"), col("leave_type_id", "Leave Type"), col("balance", "Balance")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("leave_type_id", "Leave Type ID").required().ref("leave_types"), num("balance", "Balance").decimal()},
			},
			{
				Title: "Leave Requests", Resource: "leave-requests", Table: "leave_requests", PK: "request_id",
				Columns: []Column{col("request_id", "ID"), col("emp_id", "Emp ID"), col("leave_type_id", "Leave Type"), col("from_date", "From"), col("to_date", "To"), badge("status", "Status")},
				Fields: []Field{
					employeeRef("emp_id", "Employee ID"),
					num("leave_type_id", "Leave Type ID").required().ref("leave_types"),
					date("from_date", "From Date"),
					date("to_date", "To Date"),
					text("status", "Status").hint("PENDING / APPROVED / REJECTED").withDefault("PENDING"),
				},
			},
			{
				Title: "Leave Approvals", Resource: "leave-approvals", Table: "leave_approvals", PK: "approval_id",
				Columns: []Column{col("approval_id", "ID"), col("request_id", "Request ID"), col("manager_id", "Manager ID"), col("approved_at", "Approved At")},
				Fields:  []Field{num("request_id", "Request ID").required().ref("leave_requests"), num("manager_id", "Manager ID").ref("employees")},
			},
			{
				Title: "Holidays", Resource: "holidays", Table: "holidays", PK: "holiday_id",
				Columns: []Column{col("holiday_id", "ID"), col("company_id", "Company"), col("holiday_date", "Date"), col("name", "Holiday")},
				Fields:  []Field{num("company_id", "Company ID").required().ref("companies"), date("holiday_date", "Date").required(), text("name", "Holiday Name").required()},
			},
		},
	},
	{
		Slug:        "payroll",
		Title:       "Payroll",
		Description: "Payroll cycles, payslips, bonuses, reimbursements, and taxes",
		Tabs: []Tab{
			{
				Title: "Payroll Cycles", Resource: "payroll-cycles", Table: "payroll_cycles", PK: "cycle_id",
				Columns: []Column{col("cycle_id", "ID"), col("month", "Month"), col("year", "Year")},
				Fields:  []Field{num("month", "Month").required(), num("year", "Year").required()},
			},
			{
				Title: "Payroll Runs", Resource: "payroll-runs", Table: "payroll_runs", PK: "run_id",
				Columns: []Column{col("run_id", "ID"), col("cycle_id", "Cycle ID"), col("processed_at", "Processed At")},
				Fields:  []Field{num("cycle_id", "Cycle ID").required().ref("payroll_cycles")},
			},
			{
				Title: "Payslips", Resource: "payslips", Table: "payslips", PK: "payslip_id",
				Columns: []Column{col("payslip_id", "ID"), col("emp_id", "Emp ID"), col("run_id", "Run ID")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("run_id", "Run ID").required().ref("payroll_runs")},
			},
			{
				Title: "Salary Components", Resource: "salary-components", Table: "salary_components", PK: "component_id",
				Columns: []Column{col("component_id", "ID"), col("name", "Component"), col("type", "Type")},
				Fields:  []Field{text("name", "Component Name").required(), text("type", "Type").hint("EARNING / DEDUCTION")},
			},
			{
				Title: "Payroll Details", Resource: "payroll-details", Table: "payroll_details", PK: "detail_id",
				Columns: []Column{col("detail_id", "ID"), col("payslip_id", "Payslip ID"), col("component_id", "Component"), col("amount", "Amount")},
				Fields:  []Field{num("payslip_id", "Payslip ID").required().ref("payslips"), num("component_id", "Component ID").required().ref("salary_components"), num("amount", "Amount").decimal()},
			},
			{
				Title: "Bonuses", Resource: "bonuses", Table: "bonuses", PK: "bonus_id",
				Columns: []Column{col("bonus_id", "ID"), col("emp_id", "Emp ID"), col("amount", "Amount"), col("bonus_date", "Date")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("amount", "Amount").decimal(), date("bonus_date", "Date")},
			},
			{
				Title: "Reimbursements", Resource: "reimbursements", Table: "reimbursements", PK: "reimb_id",
				Columns: []Column{col("reimb_id", "ID"), col("emp_id", "Emp ID"), col("amount", "Amount"), col("status", "Status")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("amount", "Amount").decimal(), text("status", "Status").hint("PENDING / APPROVED").withDefault("PENDING")},
			},
			{
				Title: "Tax Declarations", Resource: "tax-declarations", Table: "tax_declarations", PK: "tax_id",
				Columns: []Column{col("tax_id", "ID"), col("emp_id", "Emp ID"), col("financial_year", "FY")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("financial_year", "Financial Year").hint("2025-26")},
			},
			{
				Title: "Tax Deductions", Resource: "tax-deductions", Table: "tax_deductions", PK: "deduction_id",
				Columns: []Column{col("deduction_id", "ID"), col("emp_id", "Emp ID"), col("amount", "Amount")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("amount", "Amount").decimal()},
			},
		},
	},
	{
		Slug:        "performance",
		Title:       "Performance",
		Description: "Goals, reviews, ratings, and 360° feedback",
		Tabs: []Tab{
			{
				Title: "Cycles", Resource: "performance-cycles", Table: "performance_cycles", PK: "cycle_id",
				Columns: []Column{col("cycle_id", "ID"), col("year", "Year")},
				Fields:  []Field{num("year", "Year").required()},
			},
			{
				Title: "Goals", Resource: "goals", Table: "goals", PK: "goal_id",
				Columns: []Column{col("goal_id", "ID"), col("emp_id", "Emp ID"), col("description", "Description")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("description", "Goal Description").required()},
			},
			{
				Title: "Reviews", Resource: "reviews", Table: "reviews", PK: "review_id",
				Columns: []Column{col("review_id", "ID"), col("emp_id", "Emp ID"), col("cycle_id", "Cycle ID")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("cycle_id", "Cycle ID").required().ref("performance_cycles")},
			},
			{
				Title: "Ratings", Resource: "ratings", Table: "ratings", PK: "rating_id",
				Columns: []Column{col("rating_id", "ID"), col("review_id", "Review ID"), col("score", "Score")},
				Fields:  []Field{num("review_id", "Review ID").required().ref("reviews"), num("score", "Score (1-5)").required()},
			},
			{
				Title: "Feedback", Resource: "feedback", Table: "feedback", PK: "feedback_id",
				Columns: []Column{col("feedback_id", "ID"), col("from_emp", "From"), col("to_emp", "To"), col("comments", "Comments")},
				Fields:  []Field{employeeRef("from_emp", "From Employee ID"), employeeRef("to_emp", "To Employee ID"), text("comments", "Comments").required()},
			},
		},
	},
	{
		Slug:        "recruitment",
		Title:       "Recruitment",
		Description: "Job openings, candidates, applications, interviews, and offers",
		Tabs: []Tab{
			{
				Title: "Job Openings", Resource: "job-openings", Table: "job_openings", PK: "job_id",
				Columns: []Column{col("job_id", "ID"), col("dept_id", "Dept ID"), col("title", "Title")},
				Fields:  []Field{num("dept_id", "Department ID").required().ref("departments"), text("title", "Job Title").required()},
			},
			{
				Title: "Candidates", Resource: "candidates", Table: "candidates", PK: "candidate_id",
				Columns: []Column{col("candidate_id", "ID"), col("name", "Name"), col("email", "Email")},
				Fields:  []Field{text("name", "Candidate Name").required(), email("email", "Email")},
			},
			{
				Title: "Applications", Resource: "applications", Table: "applications", PK: "application_id",
				Columns: []Column{col("application_id", "ID"), col("candidate_id", "Candidate"), col("job_id", "Job ID"), badge("status", "Status")},
				Fields:  []Field{num("candidate_id", "Candidate ID").required().ref("candidates"), num("job_id", "Job ID").required().ref("job_openings"), text("status", "Status").hint("APPLIED / HIRED / REJECTED").withDefault("APPLIED")},
			},
			{
				Title: "Interviews", Resource: "interviews", Table: "interviews", PK: "interview_id",
				Columns: []Column{col("interview_id", "ID"), col("application_id", "Application"), col("interview_date", "Date"), badge("result", "Result")},
				Fields:  []Field{num("application_id", "Application ID").required().ref("applications"), stamp("interview_date", "Date & Time"), text("result", "Result").hint("PASS / FAIL / PENDING")},
			},
			{
				Title: "Offers", Resource: "offers", Table: "offers", PK: "offer_id",
				Columns: []Column{col("offer_id", "ID"), col("application_id", "Application"), col("salary", "Salary"), badge("status", "Status")},
				Fields:  []Field{num("application_id", "Application ID").required().ref("applications"), num("salary", "Salary").decimal(), text("status", "Status").hint("OFFERED / ACCEPTED / REJECTED")},
			},
		},
	},
	{
		Slug:        "training",
		Title:       "Training & Access",
		Description: "Training programs, assets, roles, permissions, and user accounts",
		Tabs: []Tab{
			{
				Title: "Training Programs", Resource: "training-programs", Table: "training_programs", PK: "training_id",
				Columns: []Column{col("training_id", "ID"), col("title", "Program Title")},
				Fields:  []Field{text("title", "Program Title").required()},
			},
			{
				Title: "Enrollments", Resource: "enrollments", Table: "enrollments", PK: "enrollment_id",
				Columns: []Column{col("enrollment_id", "ID"), col("emp_id", "Emp ID"), col("training_id", "Training ID")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("training_id", "Training ID").required().ref("training_programs")},
			},
			{
				Title: "Certifications", Resource: "certifications", Table: "certifications", PK: "cert_id",
				Columns: []Column{col("cert_id", "ID"), col("emp_id", "Emp ID"), col("name", "Certification")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), text("name", "Certification Name").required()},
			},
			{
				Title: "Assets", Resource: "assets", Table: "assets", PK: "asset_id",
				Columns: []Column{col("asset_id", "ID"), col("name", "Asset Name"), col("category", "Category"), col("serial_number", "Serial No."), badge("status", "Status")},
				Fields: []Field{
					text("name", "Asset Name").required(),
					choice("category", "Category", "Laptop", "Monitor", "Phone", "Accessory"),
					text("serial_number", "Serial Number"),
					text("status", "Status").hint("Available / Assigned").withDefault("Available"),
				},
			},
			{
				Title: "Asset Allocations", Resource: "asset-allocations", Table: "asset_allocations", PK: "allocation_id",
				Columns: []Column{col("allocation_id", "ID"), col("emp_id", "Emp ID"), col("asset_id", "Asset ID"), col("allocated_at", "Allocated At")},
				Fields:  []Field{employeeRef("emp_id", "Employee ID"), num("asset_id", "Asset ID").required().ref("assets")},
			},
			{
				Title: "System Roles", Resource: "system-roles", Table: "system_roles", PK: "role_id",
				Columns: []Column{col("role_id", "ID"), col("role_name", "Role Name")},
				Fields:  []Field{text("role_name", "Role Name").required()},
			},
			{
				Title: "Permissions", Resource: "permissions", Table: "permissions", PK: "permission_id",
				Columns: []Column{col("permission_id", "ID"), col("permission_name", "Permission")},
				Fields:  []Field{text("permission_name", "Permission Name").required()},
			},
			{
				Title: "Role Permissions", Resource: "role-permissions", Table: "role_permissions", PK: "role_id", NaturalKey: true,
				Columns: []Column{col("role_id", "Role ID"), col("permission_id", "Permission ID")},
				Fields:  []Field{num("role_id", "Role ID").required().ref("system_roles"), num("permission_id", "Permission ID").required().ref("permissions")},
			},
			{
				Title: "User Accounts", Resource: "user-accounts", Table: "user_accounts", PK: "user_id",
				Columns: []Column{col("user_id", "ID"), col("emp_id", "Emp ID"), col("role_id", "Role ID"), col("username", "Username")},
				Fields: []Field{
					employeeRef("emp_id", "Employee ID"),
					num("role_id", "Role ID").ref("system_roles"),
					text("username", "Username").required(),
					{Key: "password_hash", Label: "Password Hash", Type: FieldPassword},
				},
			},
		},
	},
	{
		Slug:        "finance",
		Title:       "Finance",
		Description: "Expense claims and reimbursement tracking",
		Tabs: []Tab{
			{
				Title: "Expenses", Resource: "finance/expenses", Table: "expenses", PK: "id",
				Columns: []Column{col("id", "ID"), col("employee_id", "Employee"), col("category", "Category"), col("description", "Description"), col("amount", "Amount"), col("claim_date", "Claim Date"), badge("status", "Status")},
				Fields: []Field{
					employeeRef("employee_id", "Employee ID"),
					choice("category", "Category", "Meals", "Travel", "Internet", "Office Supplies", "Training").required(),
					text("description", "Description"),
					num("amount", "Amount").required().decimal(),
					text("status", "Status").hint("Pending / Approved / Paid").withDefault("Pending"),
					date("claim_date", "Claim Date").required(),
				},
			},
		},
	},
}

// Pages returns the navigation pages in display order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

func PageBySlug(slug string) (Page, bool) {
	for _, p := range pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Tabs returns every tab of every page in display order.
func Tabs() []Tab {
	var out []Tab
	for _, p := range pages {
		out = append(out, p.Tabs...)
	}
	return out
}

// Lookup finds the tab serving the given REST resource.
func Lookup(resource string) (Tab, bool) {
	for _, p := range pages {
		for _, t := range p.Tabs {
			if t.Resource == resource {
				return t, true
			}
		}
	}
	return Tab{}, false
}
