// Package json abstracts over the JSON implementation used to encode and
// decode gateway and REST payloads. It exists so the wire codec is not
// hard-wired to encoding/json: payloads coming off the gateway are hot-path
// and benefit from a faster drop-in encoder.
package json

import (
	"io"

	"github.com/bytedance/sonic"
)

// Driver is the seam between this package and whatever JSON implementation
// backs it.
type Driver interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	DecodeStream(r io.Reader, v interface{}) error
	EncodeStream(w io.Writer, v interface{}) error
}

// sonicDriver implements Driver using bytedance/sonic, which is
// API-compatible with encoding/json for the struct tags this module relies
// on (no unsupported extensions are used).
type sonicDriver struct{}

func (sonicDriver) Marshal(v interface{}) ([]byte, error) { return sonic.Marshal(v) }

func (sonicDriver) Unmarshal(data []byte, v interface{}) error { return sonic.Unmarshal(data, v) }

func (sonicDriver) DecodeStream(r io.Reader, v interface{}) error {
	return sonic.ConfigDefault.NewDecoder(r).Decode(v)
}

func (sonicDriver) EncodeStream(w io.Writer, v interface{}) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

// Default is the driver used by Marshal, Unmarshal, DecodeStream and
// EncodeStream. Swap it before connecting if a different driver is needed.
var Default Driver = sonicDriver{}

func Marshal(v interface{}) ([]byte, error) { return Default.Marshal(v) }

func Unmarshal(data []byte, v interface{}) error { return Default.Unmarshal(data, v) }

func DecodeStream(r io.Reader, v interface{}) error { return Default.DecodeStream(r, v) }

func EncodeStream(w io.Writer, v interface{}) error { return Default.EncodeStream(w, v) }
