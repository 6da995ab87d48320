package pktline

import (
	"bytes"
	"testing"
)

func TestWriteLineLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLine(&buf, "# service=git-upload-pack\n"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	// "# service=git-upload-pack\n" is 26 bytes, +4 header = 30 = 0x1e.
	want := "001e# service=git-upload-pack\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteFlush(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFlush(&buf); err != nil {
		t.Fatalf("WriteFlush: %v", err)
	}
	if buf.String() != "0000" {
		t.Fatalf("got %q, want 0000", buf.String())
	}
}

func TestReadPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePacket(&buf, []byte("hello")); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	payload, flush, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if flush {
		t.Fatal("unexpected flush")
	}
	if string(payload) != "hello" {
		t.Fatalf("payload = %q, want hello", payload)
	}
}

func TestReadPacketFlush(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteFlush(&buf)
	payload, flush, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if !flush || payload != nil {
		t.Fatalf("flush = %v, payload = %v", flush, payload)
	}
}

func TestScannerIteratesMultiplePackets(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteLine(&buf, "want aaaa\n")
	_ = WriteLine(&buf, "want bbbb\n")
	_ = WriteFlush(&buf)

	scanner := NewScanner(&buf)

	_, flush, err := scanner.Next()
	if err != nil || flush {
		t.Fatalf("first Next: flush=%v err=%v", flush, err)
	}
	_, flush, err = scanner.Next()
	if err != nil || flush {
		t.Fatalf("second Next: flush=%v err=%v", flush, err)
	}
	_, flush, err = scanner.Next()
	if err != nil || !flush {
		t.Fatalf("third Next: flush=%v err=%v", flush, err)
	}
}
