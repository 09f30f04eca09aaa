package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// runCLI executes trackctl against a database in dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "progress.db"), "--profile", "ash", "--catalog-dir", "", "--catalog", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddAndSummary(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "add", "-s", "1", "-c", "21csb101j", "-g", "a")
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !strings.Contains(out, "Updated grade for Programming for Problem Solving (21CSB101J) to A.") {
		t.Errorf("add output = %q", out)
	}

	out, err = runCLI(t, dir, "add", "-s", "9", "-c", "XX901", "-n", "Exchange Elective", "-g", "S", "--credits", "2")
	if err != nil {
		t.Fatalf("add off-catalog error = %v", err)
	}
	if !strings.Contains(out, "Captured new course: Exchange Elective (XX901) with grade S.") {
		t.Errorf("add output = %q", out)
	}

	out, err = runCLI(t, dir, "summary")
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	if !strings.Contains(out, "Credits: 5 earned") {
		t.Errorf("summary missing earned credits:\n%s", out)
	}
	if !strings.Contains(out, "Semester 9: GPA 10.00, 2/2 credits") {
		t.Errorf("summary missing off-catalog semester:\n%s", out)
	}
}

func TestAdd_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"bad grade", []string{"add", "-s", "1", "-c", "21CSB101J", "-g", "Q"}},
		{"missing code flag", []string{"add", "-s", "1"}},
		{"off-catalog without credits", []string{"add", "-s", "1", "-c", "NEW1", "-n", "New"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, dir, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestToggleAndProfile(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "toggle", "1", "21CSB101J", "6")
	if err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if !strings.Contains(out, `Topic "Pointers" in Programming for Problem Solving marked as completed.`) {
		t.Errorf("toggle output = %q", out)
	}

	if _, err := runCLI(t, dir, "toggle", "1", "21CSB101J", "99"); err == nil {
		t.Error("toggle out of range should fail")
	}

	if _, err := runCLI(t, dir, "profile", "--name", "Ash", "--enrollment", "RA2111"); err != nil {
		t.Fatalf("profile error = %v", err)
	}
	out, err = runCLI(t, dir, "profile", "--specialization", "AI")
	if err != nil {
		t.Fatalf("profile error = %v", err)
	}
	if !strings.Contains(out, "Trainer settings saved for Ash.") {
		t.Errorf("profile output = %q", out)
	}

	out, err = runCLI(t, dir, "summary")
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	if !strings.Contains(out, "Ash (RA2111)") || !strings.Contains(out, "Specialization: AI") {
		t.Errorf("summary = %s", out)
	}
	if !strings.Contains(out, "21CSB101J Programming for Problem Solving: ") {
		t.Errorf("summary missing coding growth:\n%s", out)
	}
}

func TestCatalog(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "catalog")
	if err != nil {
		t.Fatalf("catalog error = %v", err)
	}
	if !strings.Contains(out, "B.Tech Computer Science and Engineering (172 credits)") {
		t.Errorf("catalog header missing:\n%s", out)
	}
	if !strings.Contains(out, "21CSB301T") {
		t.Errorf("catalog missing 21CSB301T")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.xlsx")

	if _, err := runCLI(t, dir, "export", path); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 10 {
		t.Errorf("sheets = %d, want summary + 8 semesters + mastery", got)
	}
}
