package pktline

import (
	"bytes"
	"testing"
)

func TestSidebandWriterFramesOnBand(t *testing.T) {
	var buf bytes.Buffer
	w := NewSidebandWriter(&buf, BandPack)

	n, err := w.Write([]byte("pack bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("pack bytes") {
		t.Fatalf("n = %d, want %d", n, len("pack bytes"))
	}

	payload, flush, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if flush {
		t.Fatal("unexpected flush")
	}
	if payload[0] != BandPack {
		t.Fatalf("band byte = %d, want %d", payload[0], BandPack)
	}
	if string(payload[1:]) != "pack bytes" {
		t.Fatalf("payload = %q", payload[1:])
	}
}

func TestSidebandWriterChunksLargeWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewSidebandWriter(&buf, BandPack)

	data := bytes.Repeat([]byte{0xab}, maxSidebandChunk+100)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var reassembled []byte
	for {
		payload, flush, err := ReadPacket(&buf)
		if flush {
			t.Fatal("unexpected flush in sideband stream")
		}
		if err != nil {
			break
		}
		reassembled = append(reassembled, payload[1:]...)
		if buf.Len() == 0 {
			break
		}
	}
	if len(reassembled) != len(data) {
		t.Fatalf("reassembled %d bytes, want %d", len(reassembled), len(data))
	}
}
