// Package wire implements the hand-rolled HTTP/1.1 request/response codec
// that speaks to the Docker daemon: chunk framing, length-bounded bodies,
// and the daemon's trailing-empty-chunk quirk.
package wire

import "fmt"

// ErrBadHexDigit is returned by decodeHexByte for any byte outside 0-9a-fA-F.
type ErrBadHexDigit byte

func (e ErrBadHexDigit) Error() string {
	return fmt.Sprintf("wire: invalid hex digit %q", byte(e))
}

// decodeHexByte converts a single ASCII hex digit to its 0-15 value.
func decodeHexByte(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, ErrBadHexDigit(b)
	}
}

// parseHexInt64 parses an ASCII hex string (no leading "0x", no sign) into
// an int64. Used to decode chunk-size lines.
func parseHexInt64(s []byte) (int64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("wire: empty hex length")
	}
	var n int64
	for _, b := range s {
		d, err := decodeHexByte(b)
		if err != nil {
			return 0, err
		}
		n = n<<4 | int64(d)
	}
	return n, nil
}
