package ethermq

import (
	"encoding/base64"
	"fmt"
)

// EncodeFrame returns the transport payload for f -- the padded, standard base64 text of every
// byte of the frame, prefix included.
func EncodeFrame(f Frame) string {
	return base64.StdEncoding.EncodeToString(f)
}

// DecodeFrame is the inverse of EncodeFrame. It returns ErrMalformedPayload if payload is not
// base64 text or if it decodes to something too small to be a frame.
func DecodeFrame(payload []byte) (Frame, error) {
	b := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))

	n, err := base64.StdEncoding.Decode(b, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64, err: %s", ErrMalformedPayload, err)
	}

	f, err := NewFrame(b[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	return f, nil
}
