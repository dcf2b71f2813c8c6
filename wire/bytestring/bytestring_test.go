package bytestring

import (
	"bytes"
	"testing"
)

func TestString_read(t *testing.T) {
	s := String{}
	if !(s).Empty() {
		t.Fatal("initial string not empty")
	}
	s = String{22, 33, 44}
	if s.Empty() {
		t.Fatal("string unexpectedly empty")
	}
	r := s.read(2)
	if len(r) != 2 {
		t.Fatal("unexpected string length after read()")
	}
	if !bytes.Equal(r, []byte{22, 33}) {
		t.Fatal("miscompare mismatch after read()")
	}
	r = s.read(0)
	if !bytes.Equal(r, []byte{}) {
		t.Fatal("miscompare mismatch after read()")
	}
	if s.read(2) != nil {
		t.Fatal("unexpected successful too-large read()")
	}
	r = s.read(1)
	if !bytes.Equal(r, []byte{44}) {
		t.Fatal("miscompare after read()")
	}
	r = s.read(0)
	if !bytes.Equal(r, []byte{}) {
		t.Fatal("miscompare after read()")
	}
	if s.read(1) != nil {
		t.Fatal("unexpected successful too-large read()")
	}
}

func TestString_Read(t *testing.T) {
	s := String{22, 33, 44}
	b := make([]byte, 10)
	n, err := s.Read(b)
	if err != nil {
		t.Fatal("Read() failed")
	}
	if n != 3 {
		t.Fatal("Read() returned incorrect length")
	}
	if !bytes.Equal(b[:3], []byte{22, 33, 44}) {
		t.Fatal("miscompare after Read()")
	}

	// s should now be empty
	n, err = s.Read(b)
	if err == nil {
		t.Fatal("Read() unexpectedly succeeded")
	}
	if n != 0 {
		t.Fatal("Read() failed as expected but returned incorrect length")
	}
	// s empty, the passed-in slice has zero length is not an error
	n, err = s.Read([]byte{})
	if err != nil {
		t.Fatal("Read() failed")
	}
	if n != 0 {
		t.Fatal("Read() returned non-zero length")
	}

	// make sure we can advance through string s (this time buffer smaller than s)
	s = String{55, 66, 77}
	b = make([]byte, 2)
	n, err = s.Read(b)
	if err != nil {
		t.Fatal("Read() failed")
	}
	if n != 2 {
		t.Fatal("Read() returned incorrect length")
	}
	if !bytes.Equal(b[:2], []byte{55, 66}) {
		t.Fatal("miscompare after Read()")
	}

	// keep reading s, one byte remaining
	n, err = s.Read(b)
	if err != nil {
		t.Fatal("Read() failed")
	}
	if n != 1 {
		t.Fatal("Read() returned incorrect length")
	}
	if !bytes.Equal(b[:1], []byte{77}) {
		t.Fatal("miscompare after Read()")
	}

	// If the buffer to read into is zero-length...
	s = String{88}
	n, err = s.Read([]byte{})
	if err != nil {
		t.Fatal("Read() into zero-length buffer failed")
	}
	if n != 0 {
		t.Fatal("Read() failed as expected but returned incorrect length")
	}
}

func TestString_Skip(t *testing.T) {
	s := String{22, 33, 44}
	b := make([]byte, 10)
	if !s.Skip(1) {
		t.Fatal("Skip() failed")
	}
	n, err := s.Read(b)
	if err != nil {
		t.Fatal("Read() failed")
	}
	if n != 2 {
		t.Fatal("Read() returned incorrect length")
	}
	if !bytes.Equal(b[:2], []byte{33, 44}) {
		t.Fatal("miscompare after Read()")
	}

	// we're at the end of the string
	if s.Skip(1) {
		t.Fatal("Skip() unexpectedly succeeded")
	}
	if !s.Skip(0) {
		t.Fatal("Skip(0) failed")
	}
}

func TestString_ReadByte(t *testing.T) {
	s := String{22, 33}
	var b byte
	if !s.ReadByte(&b) {
		t.Fatal("ReadByte() failed")
	}
	if b != 22 {
		t.Fatal("ReadByte() unexpected value")
	}
	if !s.ReadByte(&b) {
		t.Fatal("ReadByte() failed")
	}
	if b != 33 {
		t.Fatal("ReadByte() unexpected value")
	}

	// we're at the end of the string
	if s.ReadByte(&b) {
		t.Fatal("ReadByte() unexpectedly succeeded")
	}
}

func TestString_ReadBytes(t *testing.T) {
	s := String{22, 33, 44}
	var b []byte
	if !s.ReadBytes(&b, 2) {
		t.Fatal("ReadBytes() failed")
	}
	if !bytes.Equal(b, []byte{22, 33}) {
		t.Fatal("miscompare after ReadBytes()")
	}

	// s is now [44]
	if len(s) != 1 {
		t.Fatal("unexpected updated s following ReadBytes()")
	}
	if s.ReadBytes(&b, 2) {
		t.Fatal("ReadBytes() unexpected success")
	}
	if !s.ReadBytes(&b, 1) {
		t.Fatal("ReadBytes() failed")
	}
	if !bytes.Equal(b, []byte{44}) {
		t.Fatal("miscompare after ReadBytes()")
	}
}

var readInt32Tests = []struct {
	s        String
	expected int32
}{
	// Little-endian (least-significant byte first)
	/* 00 */ {String{0, 0, 0, 0}, 0},
	/* 01 */ {String{17, 0, 0, 0}, 17},
	/* 02 */ {String{0xde, 0x8a, 0x7b, 0x72}, 0x727b8ade},
	/* 03 */ {String{0xde, 0x8a, 0x7b, 0x92}, -1837397282}, // signed overflow
	/* 04 */ {String{0xff, 0xff, 0xff, 0xff}, -1},
}

var readInt32FailTests = []struct {
	s String
}{
	/* 00 */ {String{}},
	/* 01 */ {String{1, 2, 3}}, // too few bytes (must be >= 4)
}

func TestString_ReadInt32(t *testing.T) {
	// create one large string to ensure a sequences of values can be read
	var s String
	for _, tt := range readInt32Tests {
		s = append(s, tt.s...)
	}
	for i, tt := range readInt32Tests {
		var v int32
		if !s.ReadInt32(&v) {
			t.Fatalf("ReadInt32 case %d: failed", i)
		}
		if v != tt.expected {
			t.Fatalf("ReadInt32 case %d: want: %v, have: %v", i, tt.expected, v)
		}
	}
	if len(s) > 0 {
		t.Fatalf("ReadInt32 bytes remaining: %d", len(s))
	}
	for i, tt := range readInt32FailTests {
		var v int32
		prevlen := len(tt.s)
		if tt.s.ReadInt32(&v) {
			t.Fatalf("ReadInt32 fail case %d: unexpected success", i)
		}
		if v != 0 {
			t.Fatalf("ReadInt32 fail case %d: value should be zero", i)
		}
		if len(tt.s) != prevlen {
			t.Fatalf("ReadInt32 fail case %d: some bytes consumed", i)
		}
	}
}

var readUint32Tests = []struct {
	s        String
	expected uint32
}{
	// Little-endian (least-significant byte first)
	/* 00 */ {String{0, 0, 0, 0}, 0},
	/* 01 */ {String{23, 0, 0, 0}, 23},
	/* 02 */ {String{0xde, 0x8a, 0x7b, 0x92}, 0x927b8ade},
	/* 03 */ {String{0xff, 0xff, 0xff, 0xff}, 0xffffffff},
}

var readUint32FailTests = []struct {
	s String
}{
	/* 00 */ {String{}},
	/* 01 */ {String{1, 2, 3}}, // too few bytes (must be >= 4)
}

func TestString_ReadUint32(t *testing.T) {
	// create one large string to ensure a sequences of values can be read
	var s String
	for _, tt := range readUint32Tests {
		s = append(s, tt.s...)
	}
	for i, tt := range readUint32Tests {
		var v uint32
		if !s.ReadUint32(&v) {
			t.Fatalf("ReadUint32 case %d: failed", i)
		}
		if v != tt.expected {
			t.Fatalf("ReadUint32 case %d: want: %v, have: %v", i, tt.expected, v)
		}
	}
	if len(s) > 0 {
		t.Fatalf("ReadUint32 bytes remaining: %d", len(s))
	}
	for i, tt := range readUint32FailTests {
		var v uint32
		prevlen := len(tt.s)
		if tt.s.ReadUint32(&v) {
			t.Fatalf("ReadUint32 fail case %d: unexpected success", i)
		}
		if v != 0 {
			t.Fatalf("ReadUint32 fail case %d: value should be zero", i)
		}
		if len(tt.s) != prevlen {
			t.Fatalf("ReadUint32 fail case %d: some bytes consumed", i)
		}
	}
}
