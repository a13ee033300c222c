package json

// Raw holds an undecoded JSON value. It is used for the gateway dispatch
// payload's "d" field before the event name is known, and for the
// unknown(raw_json) fallback event so new server event types never crash the
// client.
type Raw []byte

// MarshalJSON returns the raw bytes verbatim.
func (r Raw) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data, since the decoder's buffer may be
// reused after this call returns.
func (r *Raw) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
