// Package digest computes the change-detection digests stored alongside
// projects, repositories and issues.
//
// A digest is the hex encoded SHA-256 of a deterministic byte encoding of a
// sequence of fields. The encoding is fixed and must never change, since
// digests computed by older versions are compared against digests computed
// by newer ones:
//
//   - A string is encoded as its byte length as a little-endian uint64,
//     followed by its UTF-8 bytes.
//   - A sequence is encoded as its element count as a little-endian uint64,
//     followed by the encoding of each element.
//   - An optional value is encoded as a single discriminator byte, 0 when
//     absent, or 1 followed by the encoding of the value when present.
//   - A bool is encoded as a single byte, 0 or 1.
//   - An int32 is encoded as 4 little-endian bytes.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Encoder accumulates the encoded fields of a digest.
//
// The zero value is ready to use:
//
//	var e digest.Encoder
//	e.String(title)
//	e.StringSlice(labels)
//	e.Bool(hasLinkedPRs)
//	d := e.Sum()
type Encoder struct {
	buf []byte
}

// String appends a string field.
func (e *Encoder) String(s string) {
	e.len(len(s))
	e.buf = append(e.buf, s...)
}

// OptString appends an optional string field.
func (e *Encoder) OptString(s *string) {
	if s == nil {
		e.buf = append(e.buf, 0)
		return
	}
	e.buf = append(e.buf, 1)
	e.String(*s)
}

// StringSlice appends a sequence of strings.
func (e *Encoder) StringSlice(ss []string) {
	e.len(len(ss))
	for _, s := range ss {
		e.String(s)
	}
}

// OptStringSlice appends an optional sequence of strings. A nil pointer is
// absent; a pointer to a nil or empty slice is a present, empty sequence.
func (e *Encoder) OptStringSlice(ss *[]string) {
	if ss == nil {
		e.buf = append(e.buf, 0)
		return
	}
	e.buf = append(e.buf, 1)
	e.StringSlice(*ss)
}

// Bool appends a bool field.
func (e *Encoder) Bool(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// OptBool appends an optional bool field.
func (e *Encoder) OptBool(b *bool) {
	if b == nil {
		e.buf = append(e.buf, 0)
		return
	}
	e.buf = append(e.buf, 1)
	e.Bool(*b)
}

// OptInt32 appends an optional int32 field.
func (e *Encoder) OptInt32(n *int32) {
	if n == nil {
		e.buf = append(e.buf, 0)
		return
	}
	e.buf = append(e.buf, 1)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(*n))
}

// Len appends the element count of a sequence whose elements will be
// appended by the caller.
func (e *Encoder) Len(n int) {
	e.len(n)
}

// Some appends a present discriminator; the value's fields follow.
func (e *Encoder) Some() {
	e.buf = append(e.buf, 1)
}

// None appends an absent discriminator.
func (e *Encoder) None() {
	e.buf = append(e.buf, 0)
}

// Sum returns the hex encoded SHA-256 of the fields appended so far.
func (e *Encoder) Sum() string {
	sum := sha256.Sum256(e.buf)
	return hex.EncodeToString(sum[:])
}

func (e *Encoder) len(n int) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(n))
}
