package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/halcyondb/semql/pkg/catalog"
)

// schemaFile is the YAML shape of a catalog description.
type schemaFile struct {
	DefaultSchema string      `yaml:"default_schema"`
	Schemas       []schemaDef `yaml:"schemas"`
}

type schemaDef struct {
	Name   string     `yaml:"name"`
	Tables []tableDef `yaml:"tables"`
}

type tableDef struct {
	Name        string      `yaml:"name"`
	Columns     []columnDef `yaml:"columns"`
	ForeignKeys []fkDef     `yaml:"foreign_keys"`
}

type columnDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Members describes the named members of a composite-typed column.
	Members []columnDef `yaml:"members"`
}

type fkDef struct {
	Name       string   `yaml:"name"`
	Columns    []string `yaml:"columns"`
	RefTable   string   `yaml:"ref_table"`
	RefColumns []string `yaml:"ref_columns"`
}

// LoadSchema builds an in-memory catalog from a YAML schema file.
func LoadSchema(path string) (*catalog.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema builds an in-memory catalog from YAML schema bytes.
func ParseSchema(data []byte) (*catalog.Memory, error) {
	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	if len(sf.Schemas) == 0 {
		return nil, fmt.Errorf("schema file declares no schemas")
	}
	if sf.DefaultSchema == "" {
		sf.DefaultSchema = sf.Schemas[0].Name
	}

	cat := catalog.NewMemory(sf.DefaultSchema)

	// Tables first, so foreign keys can point at any table in the file.
	tables := make(map[string]*catalog.MemTable)
	for _, sd := range sf.Schemas {
		sch := cat.AddSchema(sd.Name)
		for _, td := range sd.Tables {
			cols := make([]*catalog.Attribute, 0, len(td.Columns))
			for _, cd := range td.Columns {
				cols = append(cols, buildColumn(cd))
			}
			t := sch.AddTable(td.Name, cols...)
			tables[tableKey(sd.Name, td.Name)] = t
			if _, taken := tables[tableKey("", td.Name)]; !taken {
				tables[tableKey("", td.Name)] = t
			}
		}
	}

	for _, sd := range sf.Schemas {
		for _, td := range sd.Tables {
			from := tables[tableKey(sd.Name, td.Name)]
			for _, fk := range td.ForeignKeys {
				to := lookupRef(tables, sd.Name, fk.RefTable)
				if to == nil {
					return nil, fmt.Errorf("foreign key %s on %s.%s references unknown table %s",
						fk.Name, sd.Name, td.Name, fk.RefTable)
				}
				from.LinkForeignKey(fk.Name, fk.Columns, to, fk.RefColumns)
			}
		}
	}
	return cat, nil
}

func buildColumn(cd columnDef) *catalog.Attribute {
	if len(cd.Members) == 0 {
		return catalog.Col(cd.Name, cd.Type)
	}
	members := make([]*catalog.Attribute, 0, len(cd.Members))
	for _, m := range cd.Members {
		members = append(members, buildColumn(m))
	}
	return catalog.CompositeCol(cd.Name, cd.Type, members...)
}

// lookupRef resolves a foreign key target, which may be "table" (same
// schema) or "schema.table".
func lookupRef(tables map[string]*catalog.MemTable, schema, ref string) *catalog.MemTable {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return tables[tableKey(ref[:i], ref[i+1:])]
	}
	if t := tables[tableKey(schema, ref)]; t != nil {
		return t
	}
	return tables[tableKey("", ref)]
}

func tableKey(schema, table string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(table)
}
