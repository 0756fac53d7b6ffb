// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/format"
	"github.com/magnatepoint/goal-projection/pkg/projection"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders results in the named output format.
func Write(w io.Writer, outputFormat string, results []*projection.GoalProjection) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, results)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	}
	return fmt.Errorf("unsupported output format %s", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []*projection.GoalProjection) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = p.Fprintf(w, "--- Projection for goal %s as of %s ---\n", goalLabel(result), datetime.Format(result.AsOfDate))
		_, _ = p.Fprintf(w, "Target:               %s\n", format.Currency(result.TargetAmount))
		_, _ = p.Fprintf(w, "Current savings:      %s\n", format.Currency(result.CurrentSavings))
		_, _ = p.Fprintf(w, "Remaining:            %s\n", format.Currency(result.RemainingAmount))
		_, _ = p.Fprintf(w, "Progress:             %s\n", format.Percent(result.ProgressPct))
		_, _ = p.Fprintf(w, "Monthly contribution: %s\n", format.OptionalCurrency(result.MonthlyContribution))
		_, _ = p.Fprintf(w, "Completion date:      %s\n", format.Date(result.ProjectedCompletionDate))
		if result.MonthsRemaining != nil {
			_, _ = p.Fprintf(w, "Months remaining:     %d\n", *result.MonthsRemaining)
		}
		if note := status(result); note != "" {
			_, _ = p.Fprintf(w, "Status:               %s\n", note)
		}

		_, _ = p.Fprintf(w, "\nMilestone | Amount        | Projected  | Achieved | Reported\n")
		_, _ = p.Fprintf(w, "_________ | _____________ | __________ | ________ | ________\n")
		for _, m := range result.Milestones {
			_, _ = p.Fprintf(w, "%8d%% | %13s | %-10s | %-8s | %s\n",
				m.Percentage, format.Currency(m.TargetAmount), format.Date(m.ProjectedDate),
				strconv.FormatBool(m.Achieved), strconv.FormatBool(m.Reported))
		}

		if len(result.Timeline) > 0 {
			_, _ = p.Fprintf(w, "\nMonth | Date       | Savings       | Target\n")
			_, _ = p.Fprintf(w, "_____ | __________ | _____________ | _____________\n")
			for _, point := range result.Timeline {
				_, _ = p.Fprintf(w, "%5d | %s | %13s | %s\n",
					point.MonthIndex, datetime.Format(point.Date), format.Currency(point.CumulativeSavings), format.Currency(point.TargetAmount))
			}
		}

		if i < len(results)-1 {
			_, _ = p.Fprintf(w, "\n")
		}
	}
}

// CsvFormat outputs one comma-separated row per goal.
func CsvFormat(w io.Writer, results []*projection.GoalProjection) error {
	writer := csv.NewWriter(w)

	header := []string{
		"goal_id", "goal_name", "as_of_date", "target_amount", "current_savings", "remaining_amount",
		"progress_pct", "monthly_contribution", "projected_completion_date", "months_remaining", "overdue",
	}
	for _, pct := range constants.MilestonePercentages {
		header = append(header, fmt.Sprintf("milestone_%d_date", pct))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		row := []string{
			result.GoalID,
			result.Name,
			datetime.Format(result.AsOfDate),
			result.TargetAmount.StringFixed(constants.DecimalPlaces),
			result.CurrentSavings.StringFixed(constants.DecimalPlaces),
			result.RemainingAmount.StringFixed(constants.DecimalPlaces),
			result.ProgressPct.StringFixed(constants.DecimalPlaces),
			optionalAmount(result.MonthlyContribution),
			optionalDate(result.ProjectedCompletionDate),
			optionalInt(result.MonthsRemaining),
			strconv.FormatBool(result.Overdue),
		}
		for _, m := range result.Milestones {
			row = append(row, optionalDate(m.ProjectedDate))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString renders results with CsvFormat and returns the text.
func CsvString(results []*projection.GoalProjection) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// JSONFormat outputs results as an indented JSON array.
func JSONFormat(w io.Writer, results []*projection.GoalProjection) error {
	if results == nil {
		results = []*projection.GoalProjection{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func goalLabel(result *projection.GoalProjection) string {
	switch {
	case result.Name != "" && result.GoalID != "":
		return fmt.Sprintf("%s (%s)", result.Name, result.GoalID)
	case result.Name != "":
		return result.Name
	}
	return result.GoalID
}

func status(result *projection.GoalProjection) string {
	switch {
	case result.Complete():
		return "complete"
	case result.Overdue && result.Indeterminate():
		return "overdue, insufficient data"
	case result.Overdue:
		return "overdue"
	case result.Indeterminate():
		return "insufficient data"
	}
	return ""
}

func optionalAmount(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}
	return amount.StringFixed(constants.DecimalPlaces)
}

func optionalDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return datetime.Format(*date)
}

func optionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
