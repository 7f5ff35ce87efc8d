package collate

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v3"
)

// CompressionLevel selects the lz4 effort used to compress a collated
// packet's inner-packet concatenation (SPEC_FULL.md §4.11).
type CompressionLevel uint8

const (
	None CompressionLevel = iota
	Low
	Medium // default, per spec.md §6.3
	High
	VeryHigh
)

func (l CompressionLevel) lz4Level() lz4.CompressionLevel {
	switch l {
	case Low:
		return lz4.Fast
	case Medium:
		return lz4.Level1
	case High:
		return lz4.Level6
	case VeryHigh:
		return lz4.Level9
	default:
		return lz4.Fast
	}
}

func compressLZ4(src []byte, level CompressionLevel) ([]byte, error) {
	var dst bytes.Buffer
	zw := lz4.NewWriter(&dst)
	zw.Header = lz4.Header{CompressionLevel: level.lz4Level()}
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func decompressLZ4(src []byte, uncompressedSize int) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	dst := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
