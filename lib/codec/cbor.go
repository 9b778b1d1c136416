// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Bounds accepted by cbor.DecOptions.MaxArrayElements.
const (
	minArrayElements = 16
	maxArrayElements = 2147483647
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding. Kind and EventKind implement encoding.TextMarshaler and are
// written as their names.
var encMode cbor.EncMode

// decOptions is the base decoder configuration. Unknown fields are
// ignored for forward compatibility.
var decOptions = cbor.DecOptions{
	// Snapshot payloads never use non-string map keys; any-typed
	// targets decode to map[string]any so they interoperate with
	// encoding/json.
	DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
	TextUnmarshaler: cbor.TextUnmarshalerTextString,
}

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = decOptions.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v with the library's default limits.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// UnmarshalLimited decodes CBOR data into v, refusing any array with
// more than maxElements entries. maxElements is clamped to the range the
// decoder supports. Exceeding the limit returns an error wrapping
// qoserr.ErrAllocation.
func UnmarshalLimited(data []byte, v any, maxElements int) error {
	options := decOptions
	options.MaxArrayElements = min(max(maxElements, minArrayElements), maxArrayElements)
	mode, err := options.DecMode()
	if err != nil {
		return fmt.Errorf("codec: configuring decoder: %w", err)
	}

	if err := mode.Unmarshal(data, v); err != nil {
		var limitErr *cbor.MaxArrayElementsError
		if errors.As(err, &limitErr) {
			return &qoserr.Error{Op: "codec.UnmarshalLimited", Kind: qoserr.ErrAllocation, Detail: limitErr.Error()}
		}
		return err
	}
	return nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
// The CLI uses it to show raw snapshot contents.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
