package pnml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/tokenreplay/internal/petri"
	"github.com/roach88/tokenreplay/internal/xmlenc"
)

// InvisibleActivity is the toolspecific activity value marking a silent
// model transition.
const InvisibleActivity = "$invisible$"

const netType = "http://www.pnml.org/version-2009/grammar/pnmlcoremodel"

type document struct {
	XMLName xml.Name `xml:"pnml"`
	Net     netElem  `xml:"net"`
}

type netElem struct {
	ID    string     `xml:"id,attr"`
	Type  string     `xml:"type,attr,omitempty"`
	Name  *textElem  `xml:"name,omitempty"`
	Pages []pageElem `xml:"page"`
	// Some exporters put nodes directly under net.
	Places      []placeElem      `xml:"place"`
	Transitions []transitionElem `xml:"transition"`
	Arcs        []arcElem        `xml:"arc"`
	Final       []markingElem    `xml:"finalmarkings>marking"`
}

type pageElem struct {
	ID          string           `xml:"id,attr"`
	Places      []placeElem      `xml:"place"`
	Transitions []transitionElem `xml:"transition"`
	Arcs        []arcElem        `xml:"arc"`
}

type textElem struct {
	Text string `xml:"text"`
}

type placeElem struct {
	ID             string    `xml:"id,attr"`
	Name           *textElem `xml:"name,omitempty"`
	InitialMarking *textElem `xml:"initialMarking,omitempty"`
}

type toolElem struct {
	Tool     string `xml:"tool,attr,omitempty"`
	Version  string `xml:"version,attr,omitempty"`
	Activity string `xml:"activity,attr,omitempty"`
}

type transitionElem struct {
	ID    string     `xml:"id,attr"`
	Name  *textElem  `xml:"name,omitempty"`
	Tools []toolElem `xml:"toolspecific,omitempty"`
}

type arcElem struct {
	ID          string    `xml:"id,attr"`
	Source      string    `xml:"source,attr"`
	Target      string    `xml:"target,attr"`
	Inscription *textElem `xml:"inscription,omitempty"`
}

type markingElem struct {
	Places []markedPlace `xml:"place"`
}

type markedPlace struct {
	IDRef string `xml:"idref,attr"`
	Text  string `xml:"text"`
}

func (t *textElem) value() string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.Text)
}

func (t transitionElem) invisible() bool {
	for _, tool := range t.Tools {
		if tool.Activity == InvisibleActivity {
			return true
		}
	}
	return false
}

// tokens parses a marking count; empty text means zero.
func tokens(node, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("place %s: bad token count %q", node, s)
	}
	return n, nil
}

// Decode reads a PNML document into a net. Transitions whose name is
// missing or that carry the $invisible$ toolspecific activity become
// invisible. Only the first final marking is used.
func Decode(r io.Reader) (*petri.Net, error) {
	var doc document
	if err := xmlenc.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode pnml: %w", err)
	}

	n := doc.Net
	places, transitions, arcs := n.Places, n.Transitions, n.Arcs
	for _, p := range n.Pages {
		places = append(places, p.Places...)
		transitions = append(transitions, p.Transitions...)
		arcs = append(arcs, p.Arcs...)
	}

	name := n.Name.value()
	if name == "" {
		name = n.ID
	}
	b := petri.NewBuilder(name)
	for _, p := range places {
		b.Place(p.ID)
		count, err := tokens(p.ID, p.InitialMarking.value())
		if err != nil {
			return nil, fmt.Errorf("decode pnml: %w", err)
		}
		if count != 0 {
			b.Initial(p.ID, count)
		}
	}
	for _, t := range transitions {
		label := t.Name.value()
		if t.invisible() {
			label = ""
		}
		b.Transition(t.ID, label)
	}
	for _, a := range arcs {
		if w := a.Inscription.value(); w != "" && w != "1" {
			return nil, fmt.Errorf("decode pnml: arc %s: weighted arcs are not supported (inscription %q)", a.ID, w)
		}
		b.Arc(a.Source, a.Target)
	}
	if len(n.Final) > 0 {
		for _, mp := range n.Final[0].Places {
			count, err := tokens(mp.IDRef, mp.Text)
			if err != nil {
				return nil, fmt.Errorf("decode pnml: final marking: %w", err)
			}
			if count != 0 {
				b.Final(mp.IDRef, count)
			}
		}
	}

	net, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("decode pnml: %w", err)
	}
	return net, nil
}

// Encode writes net as an indented PNML document. Invisible transitions
// are named after their id and tagged with the $invisible$ activity, so
// Decode(Encode(net)) yields the same net.
func Encode(w io.Writer, net *petri.Net) error {
	page := pageElem{ID: "page0"}
	initial := net.Initial()
	for i := 0; i < net.NumPlaces(); i++ {
		p := net.Place(i)
		pe := placeElem{ID: p.Name, Name: &textElem{Text: p.Name}}
		if initial[i] > 0 {
			pe.InitialMarking = &textElem{Text: strconv.Itoa(initial[i])}
		}
		page.Places = append(page.Places, pe)
	}
	for i := 0; i < net.NumTransitions(); i++ {
		t := net.Transition(i)
		te := transitionElem{ID: t.Name, Name: &textElem{Text: t.Label}}
		if t.Invisible() {
			te.Name = &textElem{Text: t.Name}
			te.Tools = []toolElem{{Tool: "ProM", Version: "6.4", Activity: InvisibleActivity}}
		}
		page.Transitions = append(page.Transitions, te)
	}
	for i, a := range net.Arcs() {
		place := net.Place(a.Place).Name
		trans := net.Transition(a.Transition).Name
		ae := arcElem{ID: "arc" + strconv.Itoa(i), Source: place, Target: trans}
		if a.Dir == petri.TransitionToPlace {
			ae.Source, ae.Target = trans, place
		}
		page.Arcs = append(page.Arcs, ae)
	}

	var final markingElem
	for i, c := range net.Final() {
		if c > 0 {
			final.Places = append(final.Places, markedPlace{IDRef: net.Place(i).Name, Text: strconv.Itoa(c)})
		}
	}

	doc := document{Net: netElem{
		ID:    net.Name(),
		Type:  netType,
		Name:  &textElem{Text: net.Name()},
		Pages: []pageElem{page},
		Final: []markingElem{final},
	}}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode pnml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
