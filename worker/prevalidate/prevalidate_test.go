package prevalidate

import "testing"

func TestValid_JPEG(t *testing.T) {
	head := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	tail := []byte{0xFF, 0xD9}

	if !Valid(head, tail) {
		t.Error("Expected valid JPEG to be accepted")
	}
}

func TestValid_JPEG_BrokenHeader(t *testing.T) {
	head := []byte{0xFF, 0xD7, 0xFF, 0xE0}
	tail := []byte{0xFF, 0xD9}

	if Valid(head, tail) {
		t.Error("Expected altered JPEG header to be rejected")
	}
}

func TestValid_JPEG_BrokenFooter(t *testing.T) {
	head := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	tail := []byte{0xFF, 0xD8}

	if Valid(head, tail) {
		t.Error("Expected altered JPEG footer to be rejected")
	}
}

func TestValid_JPEG_MissingFooter(t *testing.T) {
	head := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	if Valid(head, nil) {
		t.Error("Expected JPEG without footer to be rejected")
	}
}

func TestValid_PNG(t *testing.T) {
	head := []byte{0x89, 0x50, 0x4E, 0x47}

	// PNG is judged on the header alone.
	if !Valid(head, nil) {
		t.Error("Expected valid PNG to be accepted")
	}
	if !Valid(head, []byte{0x00, 0x00}) {
		t.Error("Expected PNG with arbitrary footer to be accepted")
	}
}

func TestValid_PNG_BrokenHeader(t *testing.T) {
	head := []byte{0x89, 0x50, 0x4E, 0x48}

	if Valid(head, nil) {
		t.Error("Expected altered PNG header to be rejected")
	}
}

func TestValid_PlainText(t *testing.T) {
	if Valid([]byte("hell"), []byte("ld")) {
		t.Error("Expected plain text to be rejected")
	}
}

func TestValid_ShortInput(t *testing.T) {
	if Valid([]byte{0xFF}, nil) {
		t.Error("Expected truncated input to be rejected")
	}
	if Valid(nil, nil) {
		t.Error("Expected empty input to be rejected")
	}
}

func TestHasJPEGHeader(t *testing.T) {
	if !HasJPEGHeader([]byte{0xFF, 0xD8, 0xFF, 0xE1}) {
		t.Error("Expected JPEG header to be detected")
	}
	if HasJPEGHeader([]byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Error("Expected PNG header to not be detected as JPEG")
	}
}
