package ethermq

import (
	"errors"
)

// ErrConfig is returned when the configuration is missing required values or holds values we
// cannot use -- this is a startup (usage) error, the bridge never starts.
var ErrConfig = errors.New("errConfig")

// ErrConnectivity is a generic error for connectivity issues with the broker.
var ErrConnectivity = errors.New("errConnectivity")

// ErrBind is a generic error for bind issues -- like creating the tap device or finding its
// hardware address.
var ErrBind = errors.New("errBind")

// ErrMalformedPayload is returned when a backhaul message is not valid base64 text or does not
// decode to a full frame. The message is dropped, the receive loop keeps going.
var ErrMalformedPayload = errors.New("errMalformedPayload")

// ErrUndersizedFrame is returned when a frame is shorter than MinFrameSize. The frame is dropped.
var ErrUndersizedFrame = errors.New("errUndersizedFrame")

// ErrInterfaceRead is returned when reading from the local interface fails. This is fatal, there
// is only the one interface.
var ErrInterfaceRead = errors.New("errInterfaceRead")

// ErrInterfaceWrite is returned when writing a single frame to the local interface fails. The
// frame is dropped, injection continues.
var ErrInterfaceWrite = errors.New("errInterfaceWrite")

// ErrPublish is returned when the session fails to publish a frame. This is fatal, retrying is
// the session's business not ours.
var ErrPublish = errors.New("errPublish")
