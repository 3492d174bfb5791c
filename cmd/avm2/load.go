package main

import (
	"bytes"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/kristofer/avm2/pkg/abc"
	"github.com/kristofer/avm2/pkg/swf"
)

// loadImage reads path, zero-copy via mmap the way saferwall-pe's File
// loader avoids an os.ReadFile copy for large inputs, sniffs whether it
// holds a SWF container or bare ABC bytes, and decodes it.
func loadImage(path string) (*abc.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	defer data.Unmap()

	abcBytes, err := abcBytesFrom(data)
	if err != nil {
		return nil, err
	}
	img, err := abc.Decode(abcBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// abcBytesFrom returns the raw ABC bytes from data, unwrapping a SWF
// container first if data carries one of its FWS/CWS/ZWS signatures.
func abcBytesFrom(data []byte) ([]byte, error) {
	if len(data) >= 3 && (bytes.HasPrefix(data, []byte("FWS")) ||
		bytes.HasPrefix(data, []byte("CWS")) || bytes.HasPrefix(data, []byte("ZWS"))) {
		tags, err := swf.FindABCTags(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("walking SWF tags: %w", err)
		}
		if len(tags) == 0 {
			return nil, fmt.Errorf("no DoABC tags found in SWF")
		}
		return tags[0], nil
	}
	return data, nil
}
