package llmclient

import (
	"bytes"
	"testing"
)

func TestDecodeImagePayloadPlainBase64(t *testing.T) {
	got, err := DecodeImagePayload("aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("unexpected bytes: %q", got)
	}
}

func TestDecodeImagePayloadDataURL(t *testing.T) {
	got, err := DecodeImagePayload("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("unexpected bytes: %q", got)
	}
}

func TestDecodeImagePayloadURLSafeAlphabet(t *testing.T) {
	// "??>" encodes to "Pz8-" in the URL-safe alphabet.
	got, err := DecodeImagePayload("Pz8-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("??>")) {
		t.Fatalf("unexpected bytes: %q", got)
	}
}

func TestDecodeImagePayloadInvalid(t *testing.T) {
	if _, err := DecodeImagePayload("!!! not base64 !!!"); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}
