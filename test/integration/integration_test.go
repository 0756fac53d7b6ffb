package integration

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/magnatepoint/goal-projection/internal/config"
	"github.com/magnatepoint/goal-projection/internal/forecast"
	"github.com/magnatepoint/goal-projection/pkg/output"
	"github.com/magnatepoint/goal-projection/pkg/projection"
	"github.com/magnatepoint/goal-projection/pkg/testutil"
	"go.uber.org/zap"
)

func loadProjections(t *testing.T, path string) []*projection.GoalProjection {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	asOf, err := conf.ResolveAsOfDate("", time.Now())
	if err != nil {
		t.Fatalf("ResolveAsOfDate() error = %v", err)
	}

	results, err := forecast.GetProjections(logger, *conf, asOf)
	if err != nil {
		t.Fatalf("GetProjections() error = %v", err)
	}
	return results
}

// TestMainIntegrationBaseline checks that the CSV output for the test
// configuration matches the captured baseline exactly.
func TestMainIntegrationBaseline(t *testing.T) {
	results := loadProjections(t, "../test_config.yaml")

	expectedGoals := []string{"goal-a", "goal-b", "goal-c", "goal-d"}
	if len(results) != len(expectedGoals) {
		t.Fatalf("Expected %d projections, got %d", len(expectedGoals), len(results))
	}
	for i, expected := range expectedGoals {
		if results[i].GoalID != expected {
			t.Errorf("Expected goal %s at position %d, got %s", expected, i, results[i].GoalID)
		}
	}

	baseline, err := os.ReadFile("../baseline/baseline_output.csv")
	if err != nil {
		t.Fatalf("Could not read baseline CSV file: %v", err)
	}

	got, err := output.CsvString(results)
	if err != nil {
		t.Fatalf("CsvString() error = %v", err)
	}

	baselineLines := strings.Split(strings.TrimSpace(string(baseline)), "\n")
	gotLines := strings.Split(strings.TrimSpace(got), "\n")
	if len(gotLines) != len(baselineLines) {
		t.Fatalf("CSV has %d lines, baseline has %d", len(gotLines), len(baselineLines))
	}
	for i := range baselineLines {
		if gotLines[i] != baselineLines[i] {
			t.Errorf("CSV line %d differs from baseline:\n got: %s\nwant: %s", i, gotLines[i], baselineLines[i])
		}
	}
}

// TestExampleConfiguration runs the shipped example configuration end to end.
func TestExampleConfiguration(t *testing.T) {
	results := loadProjections(t, "../../config.yaml.example")

	if len(results) != 3 {
		t.Fatalf("Expected 3 projections, got %d", len(results))
	}

	vacation := testutil.FindResult(results, "vacation")
	if vacation == nil {
		t.Fatalf("Expected vacation goal in results")
	}
	if vacation.TargetAmount.String() != "10000" {
		t.Errorf("Expected derived target 10000, got %s", vacation.TargetAmount)
	}
	if vacation.MonthlyContribution == nil || vacation.MonthlyContribution.StringFixed(2) != "2500.00" {
		t.Errorf("Expected monthly contribution 2500.00, got %v", vacation.MonthlyContribution)
	}
}

// TestOutputFormats checks that every output format renders the test
// configuration without error.
func TestOutputFormats(t *testing.T) {
	results := loadProjections(t, "../test_config.yaml")

	tests := []struct {
		format   string
		contains string
	}{
		{format: "pretty", contains: "--- Projection for goal House deposit (goal-a) as of 2025-01-01 ---"},
		{format: "csv", contains: "goal-b,New car,2025-01-01"},
		{format: "json", contains: `"goal_id": "goal-c"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := output.Write(&buf, tt.format, results); err != nil {
				t.Fatalf("Write(%s) error = %v", tt.format, err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("Write(%s) output missing %q", tt.format, tt.contains)
			}
		})
	}
}

// TestConfigurationValidation runs configurations with problems through the
// same steps as main.
func TestConfigurationValidation(t *testing.T) {
	asOf := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		conf         config.Configuration
		expectError  bool
		wantWarnings int
	}{
		{
			name: "Valid goals",
			conf: config.Configuration{Goals: []config.Goal{
				{ID: "a", Name: "A", Active: true, TargetAmount: "100", TargetDate: "2025-06-01"},
			}},
		},
		{
			name: "Overdue goal still projects",
			conf: config.Configuration{Goals: []config.Goal{
				{ID: "a", Name: "A", Active: true, TargetAmount: "100", TargetDate: "2024-06-01"},
			}},
			wantWarnings: 1,
		},
		{
			name: "Duplicate ids",
			conf: config.Configuration{Goals: []config.Goal{
				{ID: "a", Name: "A", Active: true, TargetAmount: "100", MonthlyContribution: "10"},
				{ID: "a", Name: "B", Active: true, TargetAmount: "100", MonthlyContribution: "10"},
			}},
			wantWarnings: 1,
		},
		{
			name: "Negative target",
			conf: config.Configuration{Goals: []config.Goal{
				{ID: "a", Name: "A", Active: true, TargetAmount: "-100", MonthlyContribution: "10"},
			}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration(asOf)
			if len(warnings) != tt.wantWarnings {
				t.Errorf("ValidateConfiguration() returned %d warnings, expected %d: %v", len(warnings), tt.wantWarnings, warnings)
			}

			_, err := forecast.GetProjections(zap.NewNop(), tt.conf, asOf)
			if tt.expectError && err == nil {
				t.Errorf("GetProjections() expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("GetProjections() error = %v", err)
			}
		})
	}
}
