package eventlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// isHeader reports whether the first CSV row names the columns.
func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	c := strings.ToLower(strings.TrimSpace(rec[0]))
	a := strings.ToLower(strings.TrimSpace(rec[1]))
	switch {
	case (c == "case_id" || c == "case") && a == "activity":
		return true
	case c == "case:concept:name" && a == "concept:name":
		return true
	}
	return false
}

// ReadCSV reads "case_id,activity" rows. Consecutive rows with the same case
// id form one trace; a new trace starts whenever the id changes, so a case
// whose rows are interleaved with another's yields several traces.
// Columns after the second are ignored.
func ReadCSV(name string, r io.Reader) (Log, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	log := Log{Name: name}
	var current *Trace
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Log{}, fmt.Errorf("read csv %s: %w", name, err)
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return Log{}, fmt.Errorf("read csv %s: line %d: want case_id,activity, got %d field(s)", name, line, len(rec))
		}
		caseID := strings.TrimSpace(rec[0])
		activity := strings.TrimSpace(rec[1])
		if current == nil || current.Case != caseID {
			log.Traces = append(log.Traces, Trace{Case: caseID})
			current = &log.Traces[len(log.Traces)-1]
		}
		current.Activities = append(current.Activities, activity)
	}
	return log, nil
}

// WriteCSV writes the log as "case_id,activity" rows with a header.
func WriteCSV(w io.Writer, log Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"case_id", "activity"}); err != nil {
		return err
	}
	for _, t := range log.Traces {
		for _, a := range t.Activities {
			if err := cw.Write([]string{t.Case, a}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func ordinal(i int) string {
	return strconv.Itoa(i + 1)
}
