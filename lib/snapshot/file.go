// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// maxDecompressedSize bounds the decompressed size of a snapshot file.
// A machine with DefaultMaxElements cores encodes to well under 4 MiB.
const maxDecompressedSize = 64 << 20

// Compression is the outer compression of a snapshot file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// zstdEncoder and zstdDecoder are reused across calls. Both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxDecompressedSize),
	)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// FormatForPath infers the encoding and compression from a file name
// such as "host.cbor", "host.yaml.zst" or "fixture.jsonc".
func FormatForPath(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".zst"):
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".lz4"):
		compression = CompressionLZ4
		name = strings.TrimSuffix(name, ".lz4")
	}

	extension := strings.TrimPrefix(filepath.Ext(name), ".")
	if extension == "" {
		return 0, 0, qoserr.Parameter("snapshot.FormatForPath",
			"%s has no format extension (want .cbor, .json, .jsonc, .yaml or .yml)", path)
	}
	format, err := ParseFormat(extension)
	if err != nil {
		return 0, 0, err
	}
	return format, compression, nil
}

// ReadFile reads and decodes a snapshot file. See Decode for limit.
func ReadFile(path string, limit int) (*Snapshot, error) {
	data, format, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}

	snapshot, err := Decode(data, format, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

// ReadRaw reads a snapshot file and removes its outer compression
// without decoding it. Returns the encoded bytes and their format.
func ReadRaw(path string) ([]byte, Format, error) {
	format, compression, err := FormatForPath(path)
	if err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	data, err = decompress(data, compression)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return data, format, nil
}

// WriteFile encodes s in the format implied by path and writes it
// atomically.
func WriteFile(path string, s *Snapshot) error {
	format, compression, err := FormatForPath(path)
	if err != nil {
		return err
	}

	var buffer bytes.Buffer
	if err := Encode(&buffer, s, format); err != nil {
		return err
	}
	data, err := compress(buffer.Bytes(), compression)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing snapshot data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot file to %s: %w", path, err)
	}

	success = true
	return nil
}

func compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}
}

func decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, nil

	case CompressionLZ4:
		reader := io.LimitReader(lz4.NewReader(bytes.NewReader(data)), maxDecompressedSize+1)
		result, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if len(result) > maxDecompressedSize {
			return nil, qoserr.New("snapshot.ReadFile", qoserr.ErrAllocation,
				"decompressed snapshot exceeds %d bytes", maxDecompressedSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}
}
