package oem

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOEM = `<?xml version="1.0" encoding="UTF-8"?>
<ndm>
  <oem id="CCSDS_OEM_VERS" version="2.0">
    <header>
      <CREATION_DATE>2024-045T18:30:00.000Z</CREATION_DATE>
      <ORIGINATOR>JSC</ORIGINATOR>
    </header>
    <body>
      <segment>
        <metadata>
          <OBJECT_NAME>ISS</OBJECT_NAME>
          <OBJECT_ID>1998-067-A</OBJECT_ID>
          <CENTER_NAME>EARTH</CENTER_NAME>
          <REF_FRAME>EME2000</REF_FRAME>
          <TIME_SYSTEM>UTC</TIME_SYSTEM>
          <START_TIME>2024-045T12:00:00.000Z</START_TIME>
          <STOP_TIME>2024-046T12:00:00.000Z</STOP_TIME>
        </metadata>
        <data>
          <COMMENT>Units are in kg and m^2</COMMENT>
          <COMMENT>MASS=459154.20</COMMENT>
          <stateVector>
            <EPOCH>2024-045T12:00:00.000Z</EPOCH>
            <X units="km">-4945.2</X>
            <Y units="km">-3625.6</Y>
            <Z units="km">2944.8</Z>
            <X_DOT units="km/s">1.19</X_DOT>
            <Y_DOT units="km/s">-4.5</Y_DOT>
            <Z_DOT units="km/s">-5.6</Z_DOT>
          </stateVector>
          <stateVector>
            <EPOCH>2024-045T12:04:00.000Z</EPOCH>
            <X units="km">-4600.1</X>
            <Y units="km">-4580.3</Y>
            <Z units="km">1500.2</Z>
            <X_DOT units="km/s">1.70</X_DOT>
            <Y_DOT units="km/s">-3.1</Y_DOT>
            <Z_DOT units="km/s">-6.3</Z_DOT>
          </stateVector>
        </data>
      </segment>
    </body>
  </oem>
</ndm>`

func TestParseSampleDocument(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleOEM))
	require.NoError(t, err)

	assert.Equal(t, "JSC", ds.Header["ORIGINATOR"])
	assert.Equal(t, "2024-045T18:30:00.000Z", ds.Header["CREATION_DATE"])

	assert.Equal(t, "ISS", ds.Metadata["OBJECT_NAME"])
	assert.Equal(t, "EME2000", ds.Metadata["REF_FRAME"])
	assert.Equal(t, "2024-045T12:00:00.000Z", ds.Metadata["START_TIME"])

	require.Equal(t, []string{"Units are in kg and m^2", "MASS=459154.20"}, ds.Comments)

	require.Len(t, ds.Epochs, 2)
	first := ds.Epochs[0]
	assert.Equal(t, time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, -4945.2, first.X)
	assert.Equal(t, -3625.6, first.Y)
	assert.Equal(t, 2944.8, first.Z)
	assert.Equal(t, 1.19, first.DX)
	assert.Equal(t, -4.5, first.DY)
	assert.Equal(t, -5.6, first.DZ)

	second := ds.Epochs[1]
	assert.Equal(t, time.Date(2024, 2, 14, 12, 4, 0, 0, time.UTC), second.Timestamp)
}

func TestParseMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not XML",
			doc:  "this is not XML at all",
		},
		{
			name: "missing header",
			doc: `<ndm><oem><header></header><body><segment>
				<metadata><OBJECT_NAME>ISS</OBJECT_NAME></metadata>
				<data><stateVector><EPOCH>2024-045T12:00:00.000Z</EPOCH>
				<X>1</X><Y>2</Y><Z>3</Z><X_DOT>4</X_DOT><Y_DOT>5</Y_DOT><Z_DOT>6</Z_DOT>
				</stateVector></data></segment></body></oem></ndm>`,
		},
		{
			name: "no state vectors",
			doc: `<ndm><oem><header><ORIGINATOR>JSC</ORIGINATOR></header><body><segment>
				<metadata><OBJECT_NAME>ISS</OBJECT_NAME></metadata>
				<data><COMMENT>empty</COMMENT></data></segment></body></oem></ndm>`,
		},
		{
			name: "non-numeric coordinate",
			doc: `<ndm><oem><header><ORIGINATOR>JSC</ORIGINATOR></header><body><segment>
				<metadata><OBJECT_NAME>ISS</OBJECT_NAME></metadata>
				<data><stateVector><EPOCH>2024-045T12:00:00.000Z</EPOCH>
				<X>abc</X><Y>2</Y><Z>3</Z><X_DOT>4</X_DOT><Y_DOT>5</Y_DOT><Z_DOT>6</Z_DOT>
				</stateVector></data></segment></body></oem></ndm>`,
		},
		{
			name: "bad timestamp format",
			doc: `<ndm><oem><header><ORIGINATOR>JSC</ORIGINATOR></header><body><segment>
				<metadata><OBJECT_NAME>ISS</OBJECT_NAME></metadata>
				<data><stateVector><EPOCH>2024-02-14T12:00:00Z</EPOCH>
				<X>1</X><Y>2</Y><Z>3</Z><X_DOT>4</X_DOT><Y_DOT>5</Y_DOT><Z_DOT>6</Z_DOT>
				</stateVector></data></segment></body></oem></ndm>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "Wed, 14 Feb 2024 12:00:00 UTC", RenderValue("2024-045T12:00:00.000Z"))
	assert.Equal(t, "JSC", RenderValue("JSC"))
	assert.Equal(t, "2024-02-14T12:00:00Z", RenderValue("2024-02-14T12:00:00Z"))
}

func TestEpochJSONRoundTrip(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleOEM))
	require.NoError(t, err)

	out, err := ds.Epochs[0].MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"timestamp":"2024-045T12:00:00.000Z"`)
	assert.Contains(t, string(out), `"x":-4945.2`)
	assert.Contains(t, string(out), `"dz":-5.6`)
}
