package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"Student Name", "Attendance", "Eligibility"}

// EligibilityLabel is the export label for a percentage.
func EligibilityLabel(pct int) string {
	if IsEligible(pct) {
		return "Allowed"
	}
	return "Not Allowed"
}

// WriteCSV writes the summary export: student name, percentage with a % suffix, eligibility label.
func WriteCSV(w io.Writer, rows []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, strconv.Itoa(r.Percentage) + "%", EligibilityLabel(r.Percentage)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
