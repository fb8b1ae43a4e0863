package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/crud"
	"github.com/spf13/cobra"
)

var (
	listSearch  string
	listSort    string
	listDesc    bool
	listPage    int
	listFilters []string
	listOutput  string

	showOutput string
	setValues  []string
	assumeYes  bool
	exportDir  string
	pagesOut   string
)

func lookupTab(resource string) (catalog.Tab, error) {
	tab, ok := catalog.Lookup(resource)
	if !ok {
		return catalog.Tab{}, fmt.Errorf("unknown resource %q, run `hrms pages` to list them", resource)
	}
	return tab, nil
}

func filterValues(pairs []string) (url.Values, error) {
	assigned, err := parseAssignments(pairs)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, v := range assigned {
		values.Set(k, v)
	}
	return values, nil
}

// loadEngine builds the table engine for resource and fetches its rows
// with the search, sort and page flags applied.
func loadEngine(cmd *cobra.Command, deps *clientDeps, resource string) (*crud.Engine, error) {
	tab, err := lookupTab(resource)
	if err != nil {
		return nil, err
	}
	engine := crud.NewEngine(tab, deps.api, deps.toasts, deps.logger)

	filters, err := filterValues(listFilters)
	if err != nil {
		return nil, err
	}
	engine.SetFilters(filters)
	if err := engine.Refresh(cmd.Context()); err != nil {
		return nil, err
	}

	engine.Search(listSearch)
	if listSort != "" {
		if _, ok := tab.Column(listSort); !ok {
			return nil, fmt.Errorf("%s has no column %q", tab.Title, listSort)
		}
		engine.SortBy(listSort)
		if listDesc {
			engine.SortBy(listSort)
		}
	}
	engine.SetPage(listPage - 1)
	return engine, nil
}

var pagesCmd = &cobra.Command{
	Use:   "pages [slug]",
	Short: "List the HR pages and the resources behind their tabs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages := catalog.Pages()
		if len(args) == 1 {
			page, ok := catalog.PageBySlug(args[0])
			if !ok {
				return fmt.Errorf("unknown page %q", args[0])
			}
			pages = []catalog.Page{page}
		}
		if pagesOut != "table" {
			return writeOutput(cmd.OutOrStdout(), pagesOut, pages)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PAGE\tTAB\tRESOURCE\tFIELDS")
		for _, p := range pages {
			for _, t := range p.Tabs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Slug, t.Title, t.Resource, strings.Join(fieldKeys(t), ", "))
			}
		}
		return tw.Flush()
	},
}

func fieldKeys(t catalog.Tab) []string {
	keys := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		keys[i] = f.Key
		if f.Required {
			keys[i] += "*"
		}
	}
	return keys
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List the records of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		engine, err := loadEngine(cmd, deps, args[0])
		if err != nil {
			return err
		}

		switch listOutput {
		case "table":
			return engine.Render(cmd.OutOrStdout())
		case "csv":
			_, err := engine.WriteCSV(cmd.OutOrStdout())
			return err
		default:
			return writeOutput(cmd.OutOrStdout(), listOutput, engine.Page().Rows)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <resource> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := lookupTab(args[0])
		if err != nil {
			return err
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		rec, err := deps.api.Get(cmd.Context(), tab.Resource, args[1])
		if err != nil {
			return err
		}
		if showOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), showOutput, rec)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, key := range recordKeys(tab, rec) {
			label := key
			if f, ok := tab.Field(key); ok {
				label = f.Label
			} else if c, ok := tab.Column(key); ok {
				label = c.Label
			}
			fmt.Fprintf(tw, "%s\t%s\n", label, catalog.Text(rec[key]))
		}
		return tw.Flush()
	},
}

// recordKeys lists the primary key and form fields first, then whatever
// else the server returned.
func recordKeys(tab catalog.Tab, rec map[string]any) []string {
	seen := map[string]bool{}
	var keys []string
	for _, k := range tab.Keys() {
		if _, ok := rec[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range rec {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

var createCmd = &cobra.Command{
	Use:   "create <resource> --set key=value...",
	Short: "Create a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := lookupTab(args[0])
		if err != nil {
			return err
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		engine := crud.NewEngine(tab, deps.api, deps.toasts, deps.logger)
		form := engine.OpenCreate()
		if err := fillForm(form, setValues); err != nil {
			return err
		}
		return engine.Submit(cmd.Context(), form)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id> --set key=value...",
	Short: "Update a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := lookupTab(args[0])
		if err != nil {
			return err
		}
		if len(setValues) == 0 {
			return errors.New("nothing to update, pass at least one --set key=value")
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		current, err := deps.api.Get(cmd.Context(), tab.Resource, args[1])
		if err != nil {
			return err
		}

		engine := crud.NewEngine(tab, deps.api, deps.toasts, deps.logger)
		form := engine.OpenEdit(current)
		if err := fillForm(form, setValues); err != nil {
			return err
		}
		return engine.Submit(cmd.Context(), form)
	},
}

func fillForm(form *crud.Form, pairs []string) error {
	assigned, err := parseAssignments(pairs)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(assigned))
	for k := range assigned {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := form.Set(k, assigned[k]); err != nil {
			return err
		}
	}
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record after confirmation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := lookupTab(args[0])
		if err != nil {
			return err
		}
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		engine := crud.NewEngine(tab, deps.api, deps.toasts, deps.logger)
		engine.RequestDelete(map[string]any{tab.PK: args[1]})

		if !assumeYes {
			ok, err := confirm(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), engine.DeletePrompt())
			if err != nil {
				return err
			}
			if !ok {
				engine.CancelDelete()
				return nil
			}
		}
		return engine.ConfirmDelete(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <resource>",
	Short: "Export the filtered rows of a resource to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		engine, err := loadEngine(cmd, deps, args[0])
		if err != nil {
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Client.ExportDir
		}
		path, err := engine.Export(dir)
		if errors.Is(err, crud.ErrNothingToExport) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	pagesCmd.Flags().StringVarP(&pagesOut, "output", "o", "table", "output format: table, json or yaml")

	for _, c := range []*cobra.Command{listCmd, exportCmd} {
		c.Flags().StringVarP(&listSearch, "search", "q", "", "case insensitive search across the visible columns")
		c.Flags().StringVar(&listSort, "sort", "", "column key to sort by")
		c.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
		c.Flags().StringArrayVarP(&listFilters, "filter", "f", nil, "server side equality filter key=value (repeatable)")
	}
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number, 10 rows per page")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "output format: table, csv, json or yaml")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "directory for the CSV file (default client.export_dir)")

	showCmd.Flags().StringVarP(&showOutput, "output", "o", "table", "output format: table, json or yaml")
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringArrayVarP(&setValues, "set", "s", nil, "field value key=value (repeatable)")
	}
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}
