package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"sigs.k8s.io/yaml"

	"github.com/kubev2v/coach-importer/internal/importer"
)

var cmdOutput io.Writer = os.Stdout

type summaryOutput struct {
	JobID string `json:"jobId"`
	*importer.Summary
}

func printSummary(out io.Writer, jobID string, summary *importer.Summary, output string) error {
	v := summaryOutput{JobID: jobID, Summary: summary}

	switch output {
	case jsonFormat:
		marshalled, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling summary: %w", err)
		}
		fmt.Fprintf(out, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling summary: %w", err)
		}
		fmt.Fprintf(out, "%s\n", string(marshalled))
		return nil
	default:
		return printSummaryTable(out, jobID, summary)
	}
}

func printSummaryTable(out io.Writer, jobID string, summary *importer.Summary) error {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "JOB\tSTATUS\tPROCESSED\tSUCCESS\tERRORS\tWARNINGS")
	fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", jobID, summary.Status, summary.Processed, summary.SuccessCount, summary.ErrorCount, summary.Warnings)

	if len(summary.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ROW\tUNIQUE ID\tCOACH\tERROR")
		for _, e := range summary.Errors {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Row, deref(e.UniqueID), deref(e.CoachName), e.Error)
		}
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
