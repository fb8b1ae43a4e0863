package catalog

import (
	"fmt"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Table is the storage shape of one resource.
type Table struct {
	Name       string
	PK         string
	NaturalKey bool
	// PKRef is the table a natural key points at.
	PKRef   string
	Columns []TableColumn
}

type TableColumn struct {
	Name     string
	Type     FieldType
	Decimal  bool
	Required bool
	Ref      string
	Default  string
	// Timestamp marks display-only *_at columns filled by the database.
	Timestamp bool
}

func tableOf(t Tab) Table {
	tbl := Table{Name: t.Table, PK: t.PK, NaturalKey: t.NaturalKey}
	seen := map[string]bool{t.PK: true}
	for _, f := range t.Fields {
		if f.Key == t.PK {
			tbl.PKRef = f.Ref
		}
		if seen[f.Key] {
			continue
		}
		seen[f.Key] = true
		tbl.Columns = append(tbl.Columns, TableColumn{
			Name:     f.Key,
			Type:     f.Type,
			Decimal:  f.Decimal,
			Required: f.Required,
			Ref:      f.Ref,
			Default:  f.Default,
		})
	}
	for _, c := range t.Columns {
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		tc := TableColumn{Name: c.Key, Type: FieldText}
		if strings.HasSuffix(c.Key, "_at") {
			tc.Type = FieldDateTime
			tc.Timestamp = true
		}
		tbl.Columns = append(tbl.Columns, tc)
	}
	return tbl
}

// Storage returns the table backing the tab.
func (t Tab) Storage() Table { return tableOf(t) }

// Column returns the storage column, including the primary key.
func (t Table) Column(name string) (TableColumn, bool) {
	if name == t.PK {
		return TableColumn{Name: t.PK, Type: FieldNumber, Required: true}, true
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return TableColumn{}, false
}

// Tables returns one table per distinct storage table, ordered so that
// every referenced table precedes the tables pointing at it.
func Tables() ([]Table, error) {
	byName := map[string]Table{}
	var order []string
	for _, t := range Tabs() {
		if _, ok := byName[t.Table]; ok {
			continue
		}
		byName[t.Table] = tableOf(t)
		order = append(order, t.Table)
	}

	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var out []Table
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("reference cycle through table %q", name)
		}
		state[name] = visiting
		tbl := byName[name]
		refs := []TableColumn{{Name: tbl.PK, Ref: tbl.PKRef}}
		for _, c := range append(refs, tbl.Columns...) {
			if c.Ref == "" || c.Ref == name {
				continue
			}
			if _, ok := byName[c.Ref]; !ok {
				return fmt.Errorf("table %q column %q references unknown table %q", name, c.Name, c.Ref)
			}
			if err := visit(c.Ref); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, tbl)
		return nil
	}
	for _, name := range order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Quote returns ident as a quoted SQL identifier.
func Quote(ident string) string { return quote(ident) }

func sqlType(c TableColumn, d Dialect) string {
	switch c.Type {
	case FieldNumber:
		if c.Decimal {
			if d == SQLite {
				return "REAL"
			}
			return "DOUBLE PRECISION"
		}
		if d == SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case FieldDate:
		return "DATE"
	case FieldTime:
		return "TIME"
	case FieldDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// CreateSQL renders the CREATE TABLE statement for the dialect.
func (t Table) CreateSQL(d Dialect, pkOf func(table string) string) string {
	var defs []string

	switch {
	case t.NaturalKey && d == SQLite:
		defs = append(defs, quote(t.PK)+" INTEGER PRIMARY KEY")
	case t.NaturalKey:
		defs = append(defs, quote(t.PK)+" BIGINT PRIMARY KEY")
	case d == SQLite:
		defs = append(defs, quote(t.PK)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	default:
		defs = append(defs, quote(t.PK)+" BIGSERIAL PRIMARY KEY")
	}
	if t.PKRef != "" && pkOf != nil {
		defs[0] += fmt.Sprintf(" REFERENCES %s (%s)", quote(t.PKRef), quote(pkOf(t.PKRef)))
	}

	for _, c := range t.Columns {
		def := quote(c.Name) + " " + sqlType(c, d)
		if c.Required {
			def += " NOT NULL"
		}
		switch {
		case c.Timestamp:
			def += " DEFAULT CURRENT_TIMESTAMP"
		case c.Default != "":
			def += " DEFAULT '" + strings.ReplaceAll(c.Default, "'", "''") + "'"
		}
		if c.Ref != "" && pkOf != nil {
			def += fmt.Sprintf(" REFERENCES %s (%s)", quote(c.Ref), quote(pkOf(c.Ref)))
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(t.Name), strings.Join(defs, ",\n\t"))
}

func (t Table) DropSQL() string {
	return "DROP TABLE IF EXISTS " + quote(t.Name)
}

// SchemaSQL renders the full schema in dependency order.
func SchemaSQL(d Dialect) ([]string, error) {
	tables, err := Tables()
	if err != nil {
		return nil, err
	}
	pks := map[string]string{}
	for _, t := range tables {
		pks[t.Name] = t.PK
	}
	pkOf := func(name string) string { return pks[name] }

	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		stmts = append(stmts, t.CreateSQL(d, pkOf))
	}
	return stmts, nil
}
