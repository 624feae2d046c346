package ipc

import (
	"bytes"
	"testing"
)

func TestWriteReadObjectRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	obj := Object{}
	Prepare(obj, "status", 42, false)

	if err := WriteObject(&buf, obj); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	got, err := ReadObject(&buf)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if got[FieldMethod] != "status" {
		t.Errorf("method = %v, want status", got[FieldMethod])
	}
	if !Validate(got) {
		t.Errorf("round-tripped object failed validation: %v", got)
	}
}

func TestReadObjectShortLengthPrefix(t *testing.T) {
	buf := bytes.NewReader([]byte{0, 0})
	if _, err := ReadObject(buf); err == nil {
		t.Fatal("expected error reading a truncated length prefix")
	}
}

func TestReadObjectOversizedFrameRejected(t *testing.T) {
	var hdr [4]byte
	hdr[0] = 0xff // huge, bogus length
	buf := bytes.NewReader(hdr[:])
	if _, err := ReadObject(buf); err == nil {
		t.Fatal("expected error for an oversized frame length")
	}
}

func TestReadObjectTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	obj := Object{}
	Prepare(obj, "status", 1, false)
	if err := WriteObject(&buf, obj); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-1]
	if _, err := ReadObject(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected error reading a truncated body")
	}
}
