package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
)

// Format selects how an integrity report is rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q, expected table, json, yaml or csv", s)
	}
}

type integrityRow struct {
	AccountID   string `csv:"account_id" yaml:"account_id"`
	AccountName string `csv:"account_name" yaml:"account_name"`
	Stored      string `csv:"stored" yaml:"stored"`
	Recomputed  string `csv:"recomputed" yaml:"recomputed"`
	Difference  string `csv:"difference" yaml:"difference"`
}

func integrityRows(report []ledger.Discrepancy) []integrityRow {
	rows := make([]integrityRow, len(report))
	for i, d := range report {
		rows[i] = integrityRow{
			AccountID:   d.AccountID.String(),
			AccountName: d.AccountName,
			Stored:      d.Stored.StringFixed(2),
			Recomputed:  d.Recomputed.StringFixed(2),
			Difference:  d.Difference.StringFixed(2),
		}
	}
	return rows
}

// WriteIntegrity renders discrepancies found by the reconciler.
func WriteIntegrity(w io.Writer, format Format, report []ledger.Discrepancy) error {
	rows := integrityRows(report)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if report == nil {
			report = []ledger.Discrepancy{}
		}
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		if err := gocsv.Marshal(rows, w); err != nil {
			return fmt.Errorf("failed to encode csv: %w", err)
		}
		return nil
	case FormatTable, "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "All balances are consistent.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ACCOUNT ID\tNAME\tSTORED\tRECOMPUTED\tDIFFERENCE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.AccountID, r.AccountName, r.Stored, r.Recomputed, r.Difference)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
