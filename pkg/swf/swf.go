// Package swf locates ActionScript 3 bytecode embedded in a SWF
// container file.
//
// A SWF is a versioned, optionally whole-file-compressed stream of
// tagged records (spec.md §2 calls this the "external, unchanged"
// outer format). This package walks that tag stream far enough to
// find DoABC tags and hand back their raw ABC payload — everything
// past that boundary belongs to pkg/abc, not here.
//
// File Format Layout (uncompressed body, after the 8-byte file header):
//
//	[Frame Rect]   variable-width bit-packed RECT record
//	[Frame Rate]   2 bytes, 8.8 fixed point
//	[Frame Count]  2 bytes
//	[Tags]         sequence of (header, payload) records until the End tag
//
// Tag header encoding: a little-endian uint16 whose high 10 bits are
// the tag code and low 6 bits are the payload length; a length of
// 0x3F (63) means the true length follows as a little-endian uint32.
package swf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// tagCodeDoABC is the SWF tag code carrying a DoABC record (flags,
// script name, and raw ABC bytes), grounded in
// original_source/avm2/swf/swf_types.py's Tag_DoABC/DoABCTag.
const tagCodeDoABC = 82

// headerLen is the size of the fixed, never-compressed file header:
// 3-byte signature, 1-byte version, 4-byte little-endian file length.
const headerLen = 8

// FindABCTags scans r as a SWF file and returns the raw ABC payload of
// every DoABC tag it contains, in file order.
//
// It transparently decompresses a zlib-compressed ("CWS") body. An
// LZMA-compressed ("ZWS") body is reported as an explicit error rather
// than silently mis-parsed: no LZMA implementation exists in the
// example pack or the standard library to decode it (see DESIGN.md).
func FindABCTags(r io.Reader) ([][]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("swf: reading input: %w", err)
	}
	if len(raw) < headerLen {
		return nil, fmt.Errorf("swf: input too short for a SWF header (%d bytes)", len(raw))
	}

	body, err := uncompressedBody(raw)
	if err != nil {
		return nil, err
	}

	body, err = skipFrameHeader(body)
	if err != nil {
		return nil, err
	}

	return scanTags(body)
}

// uncompressedBody validates the 8-byte file header and returns the
// stream that follows it, decompressing it first if the signature
// says it was zlib-compressed.
func uncompressedBody(raw []byte) ([]byte, error) {
	magic := string(raw[0:3])
	body := raw[headerLen:]

	switch magic {
	case "FWS":
		return body, nil
	case "CWS":
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("swf: opening zlib-compressed body: %w", err)
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("swf: decompressing zlib body: %w", err)
		}
		return decompressed, nil
	case "ZWS":
		return nil, fmt.Errorf("swf: LZMA-compressed (ZWS) SWF files are not supported")
	default:
		return nil, fmt.Errorf("swf: unrecognized signature %q (want FWS, CWS, or ZWS)", magic)
	}
}

// skipFrameHeader consumes the frame rect, frame rate, and frame count
// that precede the tag stream in every SWF body, and returns what's
// left.
func skipFrameHeader(body []byte) ([]byte, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("swf: body too short for frame rect")
	}
	nbits := int(body[0] >> 3)
	totalBits := 5 + nbits*4
	rectBytes := (totalBits + 7) / 8
	const rateAndCount = 4 // 2-byte frame rate + 2-byte frame count
	if len(body) < rectBytes+rateAndCount {
		return nil, fmt.Errorf("swf: body too short for frame rect and header")
	}
	return body[rectBytes+rateAndCount:], nil
}

// scanTags walks the tag stream in body and extracts every DoABC tag's
// ABC payload, stopping at the End tag (code 0) or end of input.
func scanTags(body []byte) ([][]byte, error) {
	var abcPayloads [][]byte
	pos := 0
	for pos+2 <= len(body) {
		header := binary.LittleEndian.Uint16(body[pos : pos+2])
		pos += 2
		code := header >> 6
		length := int(header & 0x3F)
		if length == 0x3F {
			if pos+4 > len(body) {
				return nil, fmt.Errorf("swf: truncated long-form tag length at offset %d", pos)
			}
			length = int(binary.LittleEndian.Uint32(body[pos : pos+4]))
			pos += 4
		}
		if length < 0 || pos+length > len(body) {
			return nil, fmt.Errorf("swf: tag body overruns end of file at offset %d", pos)
		}
		payload := body[pos : pos+length]
		pos += length

		if code == 0 {
			break
		}
		if code == tagCodeDoABC {
			abcData, err := extractABCData(payload)
			if err != nil {
				return nil, fmt.Errorf("swf: tag at offset %d: %w", pos-length, err)
			}
			abcPayloads = append(abcPayloads, abcData)
		}
	}
	return abcPayloads, nil
}

// extractABCData strips a DoABC tag's flags and NUL-terminated script
// name off its payload, leaving the raw ABC file bytes pkg/abc.Decode
// expects.
func extractABCData(tagPayload []byte) ([]byte, error) {
	const flagsLen = 4
	if len(tagPayload) < flagsLen {
		return nil, fmt.Errorf("DoABC tag too short for flags")
	}
	rest := tagPayload[flagsLen:]
	nulIx := bytes.IndexByte(rest, 0)
	if nulIx < 0 {
		return nil, fmt.Errorf("DoABC tag name is not NUL-terminated")
	}
	return rest[nulIx+1:], nil
}
