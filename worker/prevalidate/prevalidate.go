// Package prevalidate sniffs blob bytes before the metered recognition
// call. It checks a few magic bytes rather than decoding anything: the
// recognition API accepts JPEG and PNG only, so anything else can be
// rejected for the cost of two tiny ranged reads.
package prevalidate

import "bytes"

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF}
	jpegFooter = []byte{0xFF, 0xD9}
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// HeaderSize and FooterSize are the byte ranges callers need to fetch.
const (
	HeaderSize = 4
	FooterSize = 2
)

// HasJPEGHeader reports whether head starts with the JPEG magic sequence.
// Callers use it to decide whether the footer needs to be fetched at all;
// PNG is validated on the header alone.
func HasJPEGHeader(head []byte) bool {
	return bytes.HasPrefix(head, jpegHeader)
}

// Valid reports whether the given first bytes and last bytes of a stream
// look like a supported image. A JPEG must carry both its start marker
// and its end marker; checking the footer too rejects files with a valid
// header and other content glued on after the image data.
func Valid(head, tail []byte) bool {
	if HasJPEGHeader(head) {
		return bytes.HasSuffix(tail, jpegFooter)
	}

	return len(head) >= HeaderSize && bytes.Equal(head[:HeaderSize], pngHeader)
}
