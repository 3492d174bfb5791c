package abc

import "testing"

// buildU30 appends the AVM2 variable-length encoding of v to buf.
func buildU30(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

func buildString(buf []byte, s string) []byte {
	buf = buildU30(buf, uint32(len(s)))
	return append(buf, s...)
}

// minimalABC builds the smallest legal ABC block: empty constant pool,
// no methods, no metadata, no classes, no scripts, no method bodies.
func minimalABC() []byte {
	buf := []byte{0, 0, 0, 0} // minor, major (u16 LE each)
	for i := 0; i < 7; i++ {
		buf = buildU30(buf, 0) // each constant pool array: count 0
	}
	buf = buildU30(buf, 0) // method_count
	buf = buildU30(buf, 0) // metadata_count
	buf = buildU30(buf, 0) // class_count
	buf = buildU30(buf, 0) // script_count
	buf = buildU30(buf, 0) // method_body_count
	return buf
}

func TestDecodeMinimalImage(t *testing.T) {
	img, err := Decode(minimalABC())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Pool.Strings) != 1 {
		t.Errorf("len(Strings) = %d, want 1 (sentinel only)", len(img.Pool.Strings))
	}
	if len(img.Methods) != 0 {
		t.Errorf("len(Methods) = %d, want 0", len(img.Methods))
	}
}

func TestDecodeConstantPoolSentinels(t *testing.T) {
	img, err := Decode(minimalABC())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := img.Pool
	if p.Integers[0] != 0 {
		t.Errorf("Integers[0] = %d, want 0", p.Integers[0])
	}
	if p.UInts[0] != 0 {
		t.Errorf("UInts[0] = %d, want 0", p.UInts[0])
	}
	if !(p.Doubles[0] != p.Doubles[0]) { // NaN != NaN
		t.Errorf("Doubles[0] = %v, want NaN", p.Doubles[0])
	}
	if p.Strings[0] != "" {
		t.Errorf("Strings[0] = %q, want \"\"", p.Strings[0])
	}
	if p.Namespaces[0] != nil {
		t.Errorf("Namespaces[0] = %v, want nil", p.Namespaces[0])
	}
}

func TestDecodeQNameQualifiedName(t *testing.T) {
	buf := []byte{0, 0, 0, 0}
	buf = buildU30(buf, 0) // integers
	buf = buildU30(buf, 0) // uints
	buf = buildU30(buf, 0) // doubles
	buf = buildU30(buf, 3) // strings: 2 entries
	buf = buildString(buf, "flash.utils")
	buf = buildString(buf, "Dictionary")
	buf = buildU30(buf, 2) // namespaces: 1 entry
	buf = append(buf, byte(NamespaceKindPackageNamespace))
	buf = buildU30(buf, 1) // name_ix -> "flash.utils"
	buf = buildU30(buf, 0) // ns_sets
	buf = buildU30(buf, 2) // multinames: 1 entry
	buf = append(buf, byte(MultinameKindQName))
	buf = buildU30(buf, 1) // ns_ix
	buf = buildU30(buf, 2) // name_ix -> "Dictionary"
	buf = buildU30(buf, 0) // method_count
	buf = buildU30(buf, 0) // metadata_count
	buf = buildU30(buf, 0) // class_count
	buf = buildU30(buf, 0) // script_count
	buf = buildU30(buf, 0) // method_body_count

	img, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := img.Pool.Multinames[1].QualifiedName()
	want := "flash.utils.Dictionary"
	if got != want {
		t.Errorf("QualifiedName() = %q, want %q", got, want)
	}
}

func TestDecodeTruncatedInputFails(t *testing.T) {
	if _, err := Decode([]byte{0, 0}); err == nil {
		t.Fatal("Decode on truncated input: want error, got nil")
	}
}
