// Package tzif reads and writes the TZif file format according to RFC8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// Unlike a full zone compiler, this package models a single sequence of
// 64-bit transitions: decoding a version 1 file widens its 32-bit data block
// and decoding a version 2+ file skips the 32-bit block entirely and uses the
// 64-bit one. Encoding always produces a version 2 file whose 32-bit block is
// the minimal one required for backward compatibility.
package tzif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// NOTE: All multi-octet integer values MUST be stored in network octet
// order format (high-order octet first, otherwise known as big-endian),
// with all bits significant. Signed integer values MUST be represented
// using two's complement.
var order = binary.BigEndian

// Magic is the four-octet ASCII sequence "TZif" (0x54 0x5A 0x69 0x66),
// which identifies the file as utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Version represents the version of a TZif file.
// In V1, time values are 32bit (four-octets) and in V2 upwards time
// values are 64bit (eight-octets).
type Version byte

const (
	// V1 files contain only the version 1 header and 32-bit data block.
	V1 Version = 0x00
	// V2 files additionally contain a version 2 header, a 64-bit data
	// block and a footer with a POSIX TZ string.
	V2 Version = 0x32
	// V3 files are V2 files whose TZ string may use the extensions
	// described in Section 3.3.1 of RFC8536.
	V3 Version = 0x33
	// V4 files are specified in the tzfile(5) man page and relax the
	// constraints on leap-second records.
	V4 Version = 0x34
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", byte(v))
	}
}

// header is the fixed-size part of a TZif header following the magic bytes.
type header struct {
	Version  Version
	Reserved [15]byte
	Isutcnt  uint32
	Isstdcnt uint32
	Leapcnt  uint32
	Timecnt  uint32
	Typecnt  uint32
	Charcnt  uint32
}

// LocalTimeType is a six-octet record specifying a local time type.
type LocalTimeType struct {
	// Utoff is the number of seconds to be added to UT in order to
	// determine local time. The value MUST NOT be -2**31 and SHOULD be
	// in the range [-89999, 93599].
	Utoff int32

	// Dst indicates whether local time should be considered
	// Daylight Saving Time.
	Dst bool

	// Idx is a zero-based index into the series of time zone designation
	// octets, selecting a particular NUL-terminated designation string.
	Idx uint8
}

// LeapRecord specifies a correction that needs to be applied to UTC in
// order to determine TAI.
type LeapRecord struct {
	// Occur is the UNIX leap time value at which the correction occurs.
	Occur int64
	// Corr is the value of LEAPCORR on or after the occurrence.
	Corr int32
}

// File is the decoded content of a TZif file.
type File struct {
	Version Version

	// Transitions is a series of UNIX leap-time values sorted in strictly
	// ascending order. Each value is a time at which the rules for
	// computing local time change.
	Transitions []int64

	// TransitionTypes holds, for each transition, a zero-based index into
	// Types selecting the local time type that takes effect at it.
	TransitionTypes []uint8

	// Types are the local time types of the zone. MUST NOT be empty.
	Types []LocalTimeType

	// Designations is an array of NUL-terminated designation strings.
	// Two designations MAY overlap if one is a suffix of the other.
	Designations []byte

	// Leaps are the leap-second records, sorted by occurrence time in
	// strictly ascending order.
	Leaps []LeapRecord

	// StdWall indicates per local time type whether its transitions were
	// specified as standard time (true) or wall-clock time (false).
	// Either empty or the same length as Types.
	StdWall []bool

	// UTLocal indicates per local time type whether its transitions were
	// specified as UT (true) or local time (false).
	// Either empty or the same length as Types.
	UTLocal []bool

	// Footer is the TZ string describing local time after the last
	// transition. Empty for V1 files and when not available.
	Footer string
}

// Designation returns the NUL-terminated designation string starting at idx.
func (f File) Designation(idx uint8) string {
	if int(idx) >= len(f.Designations) {
		return ""
	}
	rest := f.Designations[idx:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		return string(rest[:i])
	}
	return string(rest)
}

// Decode reads a TZif file from r.
func Decode(r io.Reader) (File, error) {
	var f File
	h, err := readHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v1 header: %w", err)
	}
	f.Version = h.Version

	if f.Version == V1 {
		err = readDataBlock(r, h, 4, &f)
		if err != nil {
			return f, fmt.Errorf("read v1 data block: %w", err)
		}
		return f, nil
	}

	// Skip the 32-bit data block; the 64-bit block repeats its content.
	if _, err := io.CopyN(io.Discard, r, v1BlockSize(h)); err != nil {
		return f, fmt.Errorf("skip v1 data block: %w", err)
	}

	h2, err := readHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v2 header: %w", err)
	}
	if h2.Version < V2 {
		return f, fmt.Errorf("invalid v2 header version: %v", h2.Version)
	}
	if err := readDataBlock(r, h2, 8, &f); err != nil {
		return f, fmt.Errorf("read v2 data block: %w", err)
	}
	if f.Footer, err = readFooter(r); err != nil {
		return f, fmt.Errorf("read footer: %w", err)
	}
	return f, nil
}

func v1BlockSize(h header) int64 {
	return int64(h.Timecnt)*5 + int64(h.Typecnt)*6 + int64(h.Charcnt) + int64(h.Leapcnt)*8 + int64(h.Isstdcnt) + int64(h.Isutcnt)
}

func readHeader(r io.Reader) (header, error) {
	var h header
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// readDataBlock reads a data block with the given transition time size in
// octets into f.
func readDataBlock(r io.Reader, h header, timeSize int, f *File) error {
	if h.Timecnt > 0 {
		f.Transitions = make([]int64, h.Timecnt)
		if timeSize == 4 {
			t32 := make([]int32, h.Timecnt)
			if err := binary.Read(r, order, &t32); err != nil {
				return fmt.Errorf("reading transition times: %w", err)
			}
			for i, t := range t32 {
				f.Transitions[i] = int64(t)
			}
		} else {
			if err := binary.Read(r, order, &f.Transitions); err != nil {
				return fmt.Errorf("reading transition times: %w", err)
			}
		}
		f.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, order, &f.TransitionTypes); err != nil {
			return fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		f.Types = make([]LocalTimeType, h.Typecnt)
		for i := range f.Types {
			if err := binary.Read(r, order, &f.Types[i]); err != nil {
				return fmt.Errorf("reading local time type record: %w", err)
			}
		}
	}
	if h.Charcnt > 0 {
		f.Designations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, f.Designations); err != nil {
			return fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		f.Leaps = make([]LeapRecord, h.Leapcnt)
		for i := range f.Leaps {
			if timeSize == 4 {
				var rec struct {
					Occur int32
					Corr  int32
				}
				if err := binary.Read(r, order, &rec); err != nil {
					return fmt.Errorf("reading leap second record: %w", err)
				}
				f.Leaps[i] = LeapRecord{Occur: int64(rec.Occur), Corr: rec.Corr}
			} else {
				if err := binary.Read(r, order, &f.Leaps[i]); err != nil {
					return fmt.Errorf("reading leap second record: %w", err)
				}
			}
		}
	}
	if h.Isstdcnt > 0 {
		f.StdWall = make([]bool, h.Isstdcnt)
		if err := binary.Read(r, order, &f.StdWall); err != nil {
			return fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		f.UTLocal = make([]bool, h.Isutcnt)
		if err := binary.Read(r, order, &f.UTLocal); err != nil {
			return fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return nil
}

var asciiNewLine = byte(0x0A)

func readFooter(r io.Reader) (string, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return "", fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			return string(b), nil
		}
		b = append(b, buf[0])
	}
}

// Encode writes f to w as a version 2 TZif file. The version 1 data block is
// the minimal one accepted by version 1 readers: no transitions, the first
// local time type and its designation.
func (f File) Encode(w io.Writer) error {
	if err := Validate(f); err != nil {
		return err
	}

	v1types := f.Types[:1]
	v1desig := append(append([]byte{}, []byte(f.Designation(f.Types[0].Idx))...), 0)
	v1h := header{
		Version: V2,
		Typecnt: 1,
		Charcnt: uint32(len(v1desig)),
	}
	if err := writeHeader(w, v1h); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	for _, lt := range v1types {
		lt.Idx = 0
		if err := binary.Write(w, order, lt); err != nil {
			return fmt.Errorf("write v1 local time type: %w", err)
		}
	}
	if _, err := w.Write(v1desig); err != nil {
		return fmt.Errorf("write v1 designations: %w", err)
	}

	v2h := header{
		Version:  V2,
		Isutcnt:  uint32(len(f.UTLocal)),
		Isstdcnt: uint32(len(f.StdWall)),
		Leapcnt:  uint32(len(f.Leaps)),
		Timecnt:  uint32(len(f.Transitions)),
		Typecnt:  uint32(len(f.Types)),
		Charcnt:  uint32(len(f.Designations)),
	}
	if err := writeHeader(w, v2h); err != nil {
		return fmt.Errorf("write v2 header: %w", err)
	}
	if err := binary.Write(w, order, f.Transitions); err != nil {
		return fmt.Errorf("write transition times: %w", err)
	}
	if err := binary.Write(w, order, f.TransitionTypes); err != nil {
		return fmt.Errorf("write transition types: %w", err)
	}
	for _, lt := range f.Types {
		if err := binary.Write(w, order, lt); err != nil {
			return fmt.Errorf("write local time type: %w", err)
		}
	}
	if _, err := w.Write(f.Designations); err != nil {
		return fmt.Errorf("write designations: %w", err)
	}
	for _, l := range f.Leaps {
		if err := binary.Write(w, order, l); err != nil {
			return fmt.Errorf("write leap second record: %w", err)
		}
	}
	if err := binary.Write(w, order, f.StdWall); err != nil {
		return fmt.Errorf("write standard/wall indicators: %w", err)
	}
	if err := binary.Write(w, order, f.UTLocal); err != nil {
		return fmt.Errorf("write UT/local indicators: %w", err)
	}
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	if _, err := io.WriteString(w, f.Footer); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, h header) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// Validate checks the invariants RFC8536 places on a decoded file.
func Validate(f File) error {
	var errs []error
	if len(f.Types) == 0 {
		errs = append(errs, errors.New("typecnt must not be zero"))
	}
	if len(f.Designations) == 0 {
		errs = append(errs, errors.New("charcnt must not be zero"))
	} else if f.Designations[len(f.Designations)-1] != 0 {
		errs = append(errs, errors.New("designations: missing null terminator"))
	}
	if times, types := len(f.Transitions), len(f.TransitionTypes); times != types {
		errs = append(errs, fmt.Errorf("inconsistent transitions: %d times, %d types", times, types))
	}
	for i, ti := range f.TransitionTypes {
		if int(ti) >= len(f.Types) {
			errs = append(errs, fmt.Errorf("transition %d: type index %d out of range [0, %d)", i, ti, len(f.Types)))
		}
	}
	for i := 1; i < len(f.Transitions); i++ {
		if f.Transitions[i-1] >= f.Transitions[i] {
			errs = append(errs, fmt.Errorf("transition times not strictly ascending at index %d", i))
		}
	}
	if n := len(f.StdWall); n != 0 && n != len(f.Types) {
		errs = append(errs, fmt.Errorf("invalid isstdcnt (%d): must be 0 or equal to typecnt (%d)", n, len(f.Types)))
	}
	if n := len(f.UTLocal); n != 0 && n != len(f.Types) {
		errs = append(errs, fmt.Errorf("invalid isutcnt (%d): must be 0 or equal to typecnt (%d)", n, len(f.Types)))
	}
	for i, lt := range f.Types {
		if int(lt.Idx) >= len(f.Designations) {
			errs = append(errs, fmt.Errorf("local time type %d: designation index %d out of range [0, %d)", i, lt.Idx, len(f.Designations)))
		}
	}
	return errors.Join(errs...)
}
