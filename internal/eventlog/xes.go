package eventlog

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/roach88/tokenreplay/internal/xmlenc"
)

const conceptName = "concept:name"

type xesLog struct {
	XMLName xml.Name   `xml:"log"`
	Traces  []xesTrace `xml:"trace"`
}

type xesTrace struct {
	Strings []xesAttr  `xml:"string"`
	Events  []xesEvent `xml:"event"`
}

type xesEvent struct {
	Strings []xesAttr `xml:"string"`
}

type xesAttr struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

func lookup(attrs []xesAttr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// ReadXES reads an XES log. Each event's concept:name string attribute is
// its activity; events without one are dropped. The trace's concept:name
// is the case id, or its 1-based position when absent.
func ReadXES(name string, r io.Reader) (Log, error) {
	var doc xesLog
	if err := xmlenc.NewDecoder(r).Decode(&doc); err != nil {
		return Log{}, fmt.Errorf("read xes %s: %w", name, err)
	}

	log := Log{Name: name, Traces: make([]Trace, 0, len(doc.Traces))}
	for i, xt := range doc.Traces {
		caseID, ok := lookup(xt.Strings, conceptName)
		if !ok {
			caseID = ordinal(i)
		}
		trace := Trace{Case: caseID, Activities: make([]string, 0, len(xt.Events))}
		for _, ev := range xt.Events {
			if act, ok := lookup(ev.Strings, conceptName); ok {
				trace.Activities = append(trace.Activities, act)
			}
		}
		log.Traces = append(log.Traces, trace)
	}
	return log, nil
}
