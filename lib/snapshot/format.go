// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/pqos/lib/codec"
	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Format is a snapshot encoding.
type Format int

const (
	FormatCBOR Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatCBOR:
		return "cbor"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses "cbor", "json" or "yaml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "cbor":
		return FormatCBOR, nil
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, qoserr.Parameter("snapshot.ParseFormat", "unknown format %q (want cbor, json or yaml)", name)
	}
}

// Encode writes s to w in the given format.
func Encode(w io.Writer, s *Snapshot, format Format) error {
	if s == nil {
		return qoserr.Parameter("snapshot.Encode", "snapshot is nil")
	}

	switch format {
	case FormatCBOR:
		data, err := codec.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding snapshot as CBOR: %w", err)
		}
		_, err = w.Write(data)
		return err

	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s); err != nil {
			return fmt.Errorf("encoding snapshot as JSON: %w", err)
		}
		return nil

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(s); err != nil {
			return fmt.Errorf("encoding snapshot as YAML: %w", err)
		}
		return encoder.Close()

	default:
		return qoserr.Parameter("snapshot.Encode", "unknown format %d", int(format))
	}
}

// Decode parses data in the given format, verifies the fingerprint and
// rebuilds the topology and registry. limit bounds the number of cores,
// capabilities and events; a non-positive limit means
// DefaultMaxElements. JSON input may contain comments and trailing
// commas.
func Decode(data []byte, format Format, limit int) (*Snapshot, error) {
	if limit <= 0 {
		limit = DefaultMaxElements
	}

	var snapshot Snapshot
	switch format {
	case FormatCBOR:
		if err := codec.UnmarshalLimited(data, &snapshot, limit); err != nil {
			return nil, fmt.Errorf("decoding CBOR snapshot: %w", err)
		}

	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &snapshot); err != nil {
			return nil, fmt.Errorf("decoding JSON snapshot: %w", err)
		}

	case FormatYAML:
		if err := yaml.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("decoding YAML snapshot: %w", err)
		}

	default:
		return nil, qoserr.Parameter("snapshot.Decode", "unknown format %d", int(format))
	}

	if err := snapshot.restore(limit); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
