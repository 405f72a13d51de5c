// Package xmlenc lets encoding/xml read documents declared in a non-UTF-8
// charset. PNML and XES exports from older tools are often ISO-8859-1.
package xmlenc

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/text/encoding/ianaindex"
)

// CharsetReader converts input in the named IANA charset to UTF-8.
// It has the signature expected by xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// NewDecoder returns an xml.Decoder that understands declared charsets.
func NewDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = CharsetReader
	return dec
}
