// Package publish implements the end-to-end publish pipeline: decoding
// the client's binary upload envelope, validating the manifest, writing
// the artifact, and appending the index entry under the repository lock.
package publish

import (
	"encoding/binary"
	"fmt"
)

// Envelope is the decoded publish body: the manifest JSON and the crate
// tarball bytes that followed it.
type Envelope struct {
	ManifestJSON []byte
	Artifact     []byte
}

// ErrEnvelopeTruncated is returned when fewer bytes are available than a
// length prefix declares.
var ErrEnvelopeTruncated = fmt.Errorf("publish: envelope truncated")

// ErrEnvelopeTrailingGarbage is returned when bytes remain after the
// artifact.
var ErrEnvelopeTrailingGarbage = fmt.Errorf("publish: envelope has trailing bytes")

// DecodeEnvelope parses the client's publish body:
//
//	<u32 LE manifest_len><manifest_len bytes JSON><u32 LE crate_len><crate_len bytes artifact>
func DecodeEnvelope(body []byte) (Envelope, error) {
	manifestJSON, rest, err := readLengthPrefixed(body)
	if err != nil {
		return Envelope{}, err
	}
	artifact, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return Envelope{}, err
	}
	if len(rest) != 0 {
		return Envelope{}, ErrEnvelopeTrailingGarbage
	}
	return Envelope{ManifestJSON: manifestJSON, Artifact: artifact}, nil
}

func readLengthPrefixed(body []byte) (chunk, rest []byte, err error) {
	if len(body) < 4 {
		return nil, nil, ErrEnvelopeTruncated
	}
	n := binary.LittleEndian.Uint32(body[:4])
	body = body[4:]
	if uint64(len(body)) < uint64(n) {
		return nil, nil, ErrEnvelopeTruncated
	}
	return body[:n], body[n:], nil
}
