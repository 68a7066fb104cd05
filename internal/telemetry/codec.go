package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Payload formats.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// cborEnc produces deterministic CBOR so identical state yields identical
// retained payloads.
var cborEnc cbor.EncMode

func init() {
	opts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	var err error
	cborEnc, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

// Encoder marshals telemetry payloads in one format.
type Encoder struct {
	format string
}

// NewEncoder returns an encoder for format. An empty format selects JSON.
func NewEncoder(format string) (*Encoder, error) {
	switch format {
	case "", FormatJSON:
		return &Encoder{format: FormatJSON}, nil
	case FormatCBOR:
		return &Encoder{format: FormatCBOR}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Format returns the payload format.
func (e *Encoder) Format() string {
	return e.format
}

// Marshal encodes v.
func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.format == FormatCBOR {
		return cborEnc.Marshal(v)
	}
	return json.Marshal(v)
}
