package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameSize bounds a single Object's encoded size, guarding against a
// corrupt or hostile length prefix driving an unbounded allocation.
const maxFrameSize = 1 << 20

// WriteObject writes obj to w as a 4-byte big-endian length prefix
// followed by its JSON encoding. spec.md §6 leaves the wire encoding
// unspecified as long as both ends agree; JSON is the pack-grounded
// choice (kornnellio-gosv's own config format already uses
// encoding/json), with a length prefix so ReadObject never has to guess
// where one object ends and the next begins on a stream descriptor.
func WriteObject(w io.Writer, obj Object) error {
	body, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("ipc: marshal: %w", err)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ipc: write length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("ipc: write body: %w", err)
	}
	return nil
}

// ReadObject reads one length-prefixed JSON object from r. A short read
// anywhere in the frame (including the length prefix itself) is
// reported as an error; the caller treats a decode failure on the IPC
// descriptor as fatal to that connection (spec.md §9's documented
// descriptor-leak fix: close the descriptor, don't just drop it from the
// watch set).
func ReadObject(r io.Reader) (Object, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("ipc: read length: %w", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("ipc: frame of %d bytes exceeds limit", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("ipc: read body: %w", err)
	}
	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("ipc: unmarshal: %w", err)
	}
	return obj, nil
}
