package oem

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// XML document shapes for the NDM/OEM format. Header and metadata are
// free-form key/value sections, so their children are captured generically.
type oemDocument struct {
	XMLName xml.Name  `xml:"ndm"`
	Header  kvSection `xml:"oem>header"`
	Body    oemBody   `xml:"oem>body"`
}

type oemBody struct {
	Metadata kvSection `xml:"segment>metadata"`
	Data     oemData   `xml:"segment>data"`
}

type oemData struct {
	Comments     []string         `xml:"COMMENT"`
	StateVectors []stateVectorXML `xml:"stateVector"`
}

type kvSection struct {
	Entries []kvEntry `xml:",any"`
}

type kvEntry struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type stateVectorXML struct {
	Epoch string   `xml:"EPOCH"`
	X     valueXML `xml:"X"`
	Y     valueXML `xml:"Y"`
	Z     valueXML `xml:"Z"`
	XDot  valueXML `xml:"X_DOT"`
	YDot  valueXML `xml:"Y_DOT"`
	ZDot  valueXML `xml:"Z_DOT"`
}

type valueXML struct {
	Units string `xml:"units,attr"`
	Text  string `xml:",chardata"`
}

// Parse decodes an OEM XML document into a Dataset. The returned error is
// always a *ParseError when the document is malformed or incomplete.
func Parse(r io.Reader) (*Dataset, error) {
	var doc oemDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decoding XML: %w", err)}
	}

	header := doc.Header.toMap()
	metadata := doc.Body.Metadata.toMap()
	if len(header) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("missing header section")}
	}
	if len(metadata) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("missing metadata section")}
	}
	if len(doc.Body.Data.StateVectors) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("no state vectors in document")}
	}

	epochs := make([]Epoch, 0, len(doc.Body.Data.StateVectors))
	for i, sv := range doc.Body.Data.StateVectors {
		e, err := sv.toEpoch()
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("state vector %d: %w", i, err)}
		}
		epochs = append(epochs, e)
	}

	comments := make([]string, 0, len(doc.Body.Data.Comments))
	for _, c := range doc.Body.Data.Comments {
		comments = append(comments, strings.TrimSpace(c))
	}

	return &Dataset{
		Header:   header,
		Metadata: metadata,
		Comments: comments,
		Epochs:   epochs,
	}, nil
}

func (s kvSection) toMap() KVMap {
	m := make(KVMap, len(s.Entries))
	for _, e := range s.Entries {
		m[e.XMLName.Local] = strings.TrimSpace(e.Value)
	}
	return m
}

func (sv stateVectorXML) toEpoch() (Epoch, error) {
	ts, err := time.Parse(TimestampLayout, strings.TrimSpace(sv.Epoch))
	if err != nil {
		return Epoch{}, fmt.Errorf("invalid EPOCH %q: %w", sv.Epoch, err)
	}

	e := Epoch{Timestamp: ts.UTC()}
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"X", sv.X.Text, &e.X},
		{"Y", sv.Y.Text, &e.Y},
		{"Z", sv.Z.Text, &e.Z},
		{"X_DOT", sv.XDot.Text, &e.DX},
		{"Y_DOT", sv.YDot.Text, &e.DY},
		{"Z_DOT", sv.ZDot.Text, &e.DZ},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return Epoch{}, fmt.Errorf("invalid %s value %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}

	return e, nil
}
