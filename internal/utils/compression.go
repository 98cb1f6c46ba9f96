package utils

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression formats understood by Compress and Decompress, named after
// the file suffix they produce
const (
	CompressionGzip = "gz"
	CompressionZstd = "zst"
	CompressionXz   = "xz"
)

// GzipCompress compresses data using gzip
func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GzipDecompress decompresses gzip data
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// ZstdCompress compresses data using zstd
func ZstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

// ZstdDecompress decompresses zstd data
func ZstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(data, nil)
}

// XzCompress compresses data using xz
func XzCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// XzDecompress decompresses xz data
func XzDecompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

// Compress compresses data with the named format
func Compress(data []byte, format string) ([]byte, error) {
	switch format {
	case CompressionGzip:
		return GzipCompress(data)
	case CompressionZstd:
		return ZstdCompress(data)
	case CompressionXz:
		return XzCompress(data)
	default:
		return nil, fmt.Errorf("unsupported compression %q", format)
	}
}

// Decompress decompresses data with the named format
func Decompress(data []byte, format string) ([]byte, error) {
	switch format {
	case CompressionGzip:
		return GzipDecompress(data)
	case CompressionZstd:
		return ZstdDecompress(data)
	case CompressionXz:
		return XzDecompress(data)
	default:
		return nil, fmt.Errorf("unsupported compression %q", format)
	}
}
