// Package bytestream implements the deterministic little-endian codec
// used to serialize every on-wire structure in this module: fixed-width
// integers, var-length integers (1/3/5/9-byte prefix), var-length byte
// blobs, and raw fixed-length blocks.
//
// The varint/varbytes discipline mirrors the one
// github.com/decred/dcrd/wire uses for its own wire encoding
// (wire.ReadVarInt/WriteVarInt), reimplemented here as an independent
// codec because this module's wire format is not Decred's: Reader never
// panics and signals failure through a boolean/error return, and Writer
// never fails, growing its buffer instead.
package bytestream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrUnexpectedEOF is returned by Reader methods that hit end of input
// mid-value.
var ErrUnexpectedEOF = errors.New("bytestream: unexpected EOF")

// ErrMalformedVarInt is returned when a varint's prefix byte implies a
// length that doesn't match its encoded value (non-canonical encoding).
var ErrMalformedVarInt = errors.New("bytestream: malformed varint")

// Reader reads values from an in-memory little-endian byte stream. It
// never panics; every method reports failure via its second/third return
// value. A failed read does not restore the stream position, and once a
// read has failed every later Read* call fails too; Err returns the first
// error.
type Reader struct {
	r   *bytes.Reader
	err error
}

// NewReader wraps b for reading.
func NewReader(b []byte) *Reader {
	return &Reader{r: bytes.NewReader(b)}
}

// Err returns the first error encountered by any Read* call, if any.
func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return r.r.Len()
}

func (r *Reader) fail(err error) bool {
	if r.err == nil {
		r.err = err
	}
	return false
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.fail(ErrUnexpectedEOF)
		return nil, false
	}
	return buf, true
}

// ReadByte reads a single byte. Implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.fail(ErrUnexpectedEOF)
		return 0, r.err
	}
	return b, nil
}

// ReadUint8 reads one byte as a uint8.
func (r *Reader) ReadUint8() (uint8, bool) {
	b, err := r.ReadByte()
	return b, err == nil
}

// ReadUint16LE reads a little-endian uint16.
func (r *Reader) ReadUint16LE() (uint16, bool) {
	b, ok := r.ReadBytes(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

// ReadUint32LE reads a little-endian uint32.
func (r *Reader) ReadUint32LE() (uint32, bool) {
	b, ok := r.ReadBytes(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// ReadUint64LE reads a little-endian uint64.
func (r *Reader) ReadUint64LE() (uint64, bool) {
	b, ok := r.ReadBytes(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// ReadInt32LE reads a little-endian int32.
func (r *Reader) ReadInt32LE() (int32, bool) {
	v, ok := r.ReadUint32LE()
	return int32(v), ok
}

// ReadInt64LE reads a little-endian int64.
func (r *Reader) ReadInt64LE() (int64, bool) {
	v, ok := r.ReadUint64LE()
	return int64(v), ok
}

// ReadVarUint reads a variable-length unsigned integer: a one-byte
// discriminant (0xfd/0xfe/0xff trigger a following 2/4/8-byte value;
// anything below 0xfd is the value itself), matching the 1/3/5/9-byte
// encoding spec §4.1 calls for.
func (r *Reader) ReadVarUint() (uint64, bool) {
	disc, ok := r.ReadUint8()
	if !ok {
		return 0, false
	}
	switch disc {
	case 0xfd:
		v, ok := r.ReadUint16LE()
		if !ok {
			return 0, false
		}
		if v < 0xfd {
			return 0, r.fail(ErrMalformedVarInt)
		}
		return uint64(v), true
	case 0xfe:
		v, ok := r.ReadUint32LE()
		if !ok {
			return 0, false
		}
		if v <= 0xffff {
			return 0, r.fail(ErrMalformedVarInt)
		}
		return uint64(v), true
	case 0xff:
		v, ok := r.ReadUint64LE()
		if !ok {
			return 0, false
		}
		if v <= 0xffffffff {
			return 0, r.fail(ErrMalformedVarInt)
		}
		return v, true
	default:
		return uint64(disc), true
	}
}

// ReadVarBytes reads a varint-prefixed byte blob.
func (r *Reader) ReadVarBytes() ([]byte, bool) {
	n, ok := r.ReadVarUint()
	if !ok {
		return nil, false
	}
	if n > uint64(r.Len()) {
		r.fail(ErrUnexpectedEOF)
		return nil, false
	}
	return r.ReadBytes(int(n))
}

// ReadVarString reads a varint-prefixed UTF-8 string.
func (r *Reader) ReadVarString() (string, bool) {
	b, ok := r.ReadVarBytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

// Writer accumulates a little-endian byte stream. No method can fail: the
// underlying buffer grows as needed.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteUint16LE appends a little-endian uint16.
func (w *Writer) WriteUint16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteUint32LE appends a little-endian uint32.
func (w *Writer) WriteUint32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteUint64LE appends a little-endian uint64.
func (w *Writer) WriteUint64LE(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteInt32LE appends a little-endian int32.
func (w *Writer) WriteInt32LE(v int32) {
	w.WriteUint32LE(uint32(v))
}

// WriteInt64LE appends a little-endian int64.
func (w *Writer) WriteInt64LE(v int64) {
	w.WriteUint64LE(uint64(v))
}

// WriteVarUint appends v using the 1/3/5/9-byte discriminated encoding.
func (w *Writer) WriteVarUint(v uint64) {
	switch {
	case v < 0xfd:
		w.WriteUint8(uint8(v))
	case v <= 0xffff:
		w.WriteUint8(0xfd)
		w.WriteUint16LE(uint16(v))
	case v <= 0xffffffff:
		w.WriteUint8(0xfe)
		w.WriteUint32LE(uint32(v))
	default:
		w.WriteUint8(0xff)
		w.WriteUint64LE(v)
	}
}

// VarUintSerializeSize returns the number of bytes WriteVarUint(v) would
// produce, without writing anything — used by fee-size estimation.
func VarUintSerializeSize(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// WriteVarBytes appends a varint length prefix followed by b.
func (w *Writer) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteVarString appends a varint length prefix followed by s's bytes.
func (w *Writer) WriteVarString(s string) {
	w.WriteVarBytes([]byte(s))
}
