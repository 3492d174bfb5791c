package swf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"
)

// buildSWF assembles a minimal, uncompressed SWF byte stream containing
// one DoABC tag wrapping abcBytes, followed by an End tag.
func buildSWF(abcBytes []byte) []byte {
	var body bytes.Buffer
	body.Write([]byte{0x08, 0x00}) // rect: nbits=1 (top 5 bits) + four 1-bit fields = 9 bits, padded to 2 bytes
	var rateCount [4]byte
	body.Write(rateCount[:])

	var doABCPayload bytes.Buffer
	var flags [4]byte
	doABCPayload.Write(flags[:])
	doABCPayload.WriteString("merged")
	doABCPayload.WriteByte(0)
	doABCPayload.Write(abcBytes)

	writeTag(&body, tagCodeDoABC, doABCPayload.Bytes())
	writeTag(&body, 0, nil) // End tag

	var file bytes.Buffer
	file.WriteString("FWS")
	file.WriteByte(10)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(headerLen+body.Len()))
	file.Write(length[:])
	file.Write(body.Bytes())
	return file.Bytes()
}

func writeTag(w *bytes.Buffer, code uint16, payload []byte) {
	length := len(payload)
	if length < 0x3F {
		header := (code << 6) | uint16(length)
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], header)
		w.Write(buf[:])
	} else {
		header := (code << 6) | 0x3F
		var hbuf [2]byte
		binary.LittleEndian.PutUint16(hbuf[:], header)
		w.Write(hbuf[:])
		var lbuf [4]byte
		binary.LittleEndian.PutUint32(lbuf[:], uint32(length))
		w.Write(lbuf[:])
	}
	w.Write(payload)
}

func TestFindABCTagsUncompressed(t *testing.T) {
	abc := []byte{0x01, 0x02, 0x03, 0x04}
	swfBytes := buildSWF(abc)

	tags, err := FindABCTags(bytes.NewReader(swfBytes))
	if err != nil {
		t.Fatalf("FindABCTags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("got %d ABC tags, want 1", len(tags))
	}
	if !bytes.Equal(tags[0], abc) {
		t.Errorf("ABC payload = %v, want %v", tags[0], abc)
	}
}

func TestFindABCTagsCompressed(t *testing.T) {
	abc := []byte{0xAA, 0xBB, 0xCC}
	uncompressed := buildSWF(abc)
	body := uncompressed[headerLen:]

	var compressedBody bytes.Buffer
	zw := zlib.NewWriter(&compressedBody)
	if _, err := zw.Write(body); err != nil {
		t.Fatalf("compressing body: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zlib writer: %v", err)
	}

	var file bytes.Buffer
	file.WriteString("CWS")
	file.WriteByte(10)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(uncompressed)))
	file.Write(length[:])
	file.Write(compressedBody.Bytes())

	tags, err := FindABCTags(bytes.NewReader(file.Bytes()))
	if err != nil {
		t.Fatalf("FindABCTags: %v", err)
	}
	if len(tags) != 1 || !bytes.Equal(tags[0], abc) {
		t.Fatalf("got %v, want one tag with payload %v", tags, abc)
	}
}

func TestFindABCTagsRejectsLZMA(t *testing.T) {
	raw := append([]byte("ZWS"), 10, 0, 0, 0, 0)
	if _, err := FindABCTags(bytes.NewReader(raw)); err == nil {
		t.Error("FindABCTags accepted a ZWS (LZMA) file, want an explicit error")
	}
}

func TestFindABCTagsRejectsBadSignature(t *testing.T) {
	raw := append([]byte("XYZ"), 10, 0, 0, 0, 0)
	if _, err := FindABCTags(bytes.NewReader(raw)); err == nil {
		t.Error("FindABCTags accepted an unrecognized signature")
	}
}

func TestFindABCTagsNoABC(t *testing.T) {
	var body bytes.Buffer
	body.Write([]byte{0x08, 0x00})
	var rateCount [4]byte
	body.Write(rateCount[:])
	writeTag(&body, 1, []byte{0x00}) // ShowFrame, not DoABC
	writeTag(&body, 0, nil)

	var file bytes.Buffer
	file.WriteString("FWS")
	file.WriteByte(10)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(headerLen+body.Len()))
	file.Write(length[:])
	file.Write(body.Bytes())

	tags, err := FindABCTags(bytes.NewReader(file.Bytes()))
	if err != nil {
		t.Fatalf("FindABCTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("got %d ABC tags, want 0", len(tags))
	}
}
