// Package pktline implements the smart git HTTP protocol's length-prefixed
// framing: every frame is a 4 ASCII hex digit length (including the 4
// header bytes) followed by that many payload bytes, with a length of
// "0000" marking a flush packet. The advertisement and upload-pack wire
// format are a byte-exact contract the client checks, so this is
// hand-written against the grammar rather than delegated to a generic
// git library.
package pktline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// maxPayload is the largest payload a single pkt-line may carry: the
// 4-hex-digit length field tops out at 0xffff including its own 4 bytes.
const maxPayload = 0xffff - 4

// WritePacket writes payload as a single pkt-line.
func WritePacket(w io.Writer, payload []byte) error {
	if len(payload) > maxPayload {
		return fmt.Errorf("pktline: payload too large: %d bytes", len(payload))
	}
	if _, err := fmt.Fprintf(w, "%04x", len(payload)+4); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// WriteLine writes s as a pkt-line payload verbatim — callers include any
// trailing '\n' themselves, per the advertisement grammar.
func WriteLine(w io.Writer, s string) error {
	return WritePacket(w, []byte(s))
}

// WriteFlush writes the flush-pkt "0000".
func WriteFlush(w io.Writer) error {
	_, err := io.WriteString(w, "0000")
	return err
}

// ReadPacket reads one pkt-line from r. flush is true and payload is nil
// for a flush-pkt.
func ReadPacket(r io.Reader) (payload []byte, flush bool, err error) {
	var lenHex [4]byte
	if _, err := io.ReadFull(r, lenHex[:]); err != nil {
		return nil, false, err
	}
	n, err := strconv.ParseUint(string(lenHex[:]), 16, 16)
	if err != nil {
		return nil, false, fmt.Errorf("pktline: invalid length header %q: %w", lenHex, err)
	}
	if n == 0 {
		return nil, true, nil
	}
	if n < 4 {
		return nil, false, fmt.Errorf("pktline: invalid length %d", n)
	}
	payload = make([]byte, n-4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// Scanner yields successive pkt-lines from an underlying reader. A
// flush-pkt does not end the scan, so one Scanner can read across
// sections (e.g. a wants section followed by a haves section).
type Scanner struct {
	r io.Reader
}

// NewScanner returns a Scanner reading pkt-lines from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next returns the next pkt-line payload, or io.EOF once the underlying
// reader is exhausted. Flush packets are returned with flush=true and an
// empty payload; they do not terminate iteration.
func (s *Scanner) Next() (payload []byte, flush bool, err error) {
	return ReadPacket(s.r)
}
