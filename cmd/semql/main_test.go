// Package main provides tests for the semql CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halcyondb/semql/internal/cli"
)

const testSchema = `
default_schema: public
schemas:
  - name: public
    tables:
      - name: employees
        columns:
          - {name: id, type: integer}
          - {name: name, type: varchar}
          - {name: dept_id, type: integer}
        foreign_keys:
          - {name: fk_emp_dept, columns: [dept_id], ref_table: departments, ref_columns: [id]}
      - name: departments
        columns:
          - {name: id, type: integer}
          - {name: title, type: varchar}
`

func writeFixtures(t *testing.T) (schemaPath, queryPath string) {
	t.Helper()
	dir := t.TempDir()
	schemaPath = filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o600); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	queryPath = filepath.Join(dir, "query.sql")
	sql := "SELECT e.name, d.title FROM employees e JOIN departments d ON e.dept_id = d.id"
	if err := os.WriteFile(queryPath, []byte(sql), 0o600); err != nil {
		t.Fatalf("failed to write query: %v", err)
	}
	return schemaPath, queryPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "semql") {
		t.Errorf("version output should contain 'semql', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, expected := range []string{"analyze", "complete", "version"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	schemaPath, queryPath := writeFixtures(t)

	output, err := runCLI(t, "analyze", "--schema", schemaPath, queryPath)
	if err != nil {
		t.Errorf("analyze command error = %v", err)
	}
	if !strings.Contains(output, "No problems found") {
		t.Errorf("analyze output should report no problems, got: %s", output)
	}
}

func TestAnalyzeCommandUnknownTable(t *testing.T) {
	schemaPath, _ := writeFixtures(t)

	output, err := runCLI(t,
		"analyze", "--schema", schemaPath, "-e", "SELECT id FROM nosuchtable")
	if err == nil {
		t.Error("analyze should fail on an unknown table")
	}
	if !strings.Contains(output, "nosuchtable") {
		t.Errorf("analyze output should name the unknown table, got: %s", output)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	schemaPath, _ := writeFixtures(t)

	output, err := runCLI(t,
		"analyze", "-o", "json", "--schema", schemaPath, "-e", "SELECT bogus FROM employees")
	if err == nil {
		t.Error("analyze should fail on an unknown column")
	}
	if !strings.Contains(output, `"severity": "error"`) {
		t.Errorf("json output should carry the severity, got: %s", output)
	}
}

func TestCompleteCommand(t *testing.T) {
	schemaPath, _ := writeFixtures(t)

	output, err := runCLI(t,
		"complete", "--schema", schemaPath, "-e", "SELECT id, na| FROM employees")
	if err != nil {
		t.Errorf("complete command error = %v", err)
	}
	if !strings.Contains(output, "name") {
		t.Errorf("complete output should propose 'name', got: %s", output)
	}
}

func TestCompleteCommandPlain(t *testing.T) {
	schemaPath, _ := writeFixtures(t)

	output, err := runCLI(t,
		"complete", "-f", "plain", "--schema", schemaPath, "-e", "SELECT * FROM emp")
	if err != nil {
		t.Errorf("complete command error = %v", err)
	}
	if !strings.Contains(output, "employees") {
		t.Errorf("complete output should propose 'employees', got: %s", output)
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			if _, err := runCLI(t, "completion", shell); err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "unknown-command"); err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestUnknownDialect(t *testing.T) {
	if _, err := runCLI(t, "analyze", "-d", "nosuchdialect", "-e", "SELECT 1"); err == nil {
		t.Error("unknown dialect should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
