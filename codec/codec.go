package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/veloxq/query"
)

// Format is a wire format.
type Format uint8

// Wire formats.
const (
	JSON Format = iota + 1
	Msgpack
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case Msgpack:
		return "msgpack"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	default:
		return 0, fmt.Errorf("codec: unknown format %q", s)
	}
}

// ErrFormat is returned for an unsupported Format value.
var ErrFormat = errors.New("codec: unsupported format")

// Marshal encodes the descriptor in the given format.
func Marshal(d *query.Descriptor, f Format) ([]byte, error) {
	doc, err := encodeDescriptor(d)
	if err != nil {
		return nil, err
	}
	switch f {
	case JSON:
		return json.Marshal(doc)
	case Msgpack:
		return msgpack.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, f)
	}
}

// Unmarshal decodes a descriptor encoded by Marshal. Values are restored to
// the normalized forms the parser produces: integers as int64, datetimes as
// UTC time.Time and JSON documents as maps and slices.
func Unmarshal(b []byte, f Format) (*query.Descriptor, error) {
	var doc descriptor
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("codec: decode json: %w", err)
		}
	case Msgpack:
		if err := msgpack.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("codec: decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, f)
	}
	return doc.decode()
}
