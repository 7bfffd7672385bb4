/*
	   axx VLIW bundle packer test routines.

		Copyright (c) 2024, Richard Cornwell
*/
package assembler

import (
	"math/big"
	"testing"
)

func TestPackVLIWBundle(t *testing.T) {
	c := newTestContext()
	c.Bits = 8
	c.VLIW = VLIWConfig{
		WordBits:     128,
		InstBits:     41,
		TemplateBits: 5,
		Nop:          []byte{0x00},
		Set:          true,
	}
	c.VLIWSet = []VLIWRow{
		{IdxSet: []int64{0, 1}, Templ: "0x1F"},
	}

	subs := []SubInst{
		{Idx: 0, Value: big.NewInt(0x1FFFFFFFFFF)},
		{Idx: 1, Value: big.NewInt(0x1FFFFFFFFFF)},
	}
	if err := c.PackVLIW(subs); err != nil {
		t.Fatalf("PackVLIW failed: %v", err)
	}
	if c.PC != 16 {
		t.Fatalf("PC after 128-bit bundle = %d, want 16", c.PC)
	}
	// word_bits > 0 means the word is stored MSB-first, so SetBytes
	// recovers it directly; the low 5 bits must equal the template 0x1F.
	word := new(big.Int).SetBytes(c.Image[:16])
	low5 := new(big.Int).And(word, big.NewInt(0x1F))
	if low5.Int64() != 0x1F {
		t.Errorf("low 5 bits = %x, want 1f", low5.Int64())
	}
}

func TestPackVLIWNoMatchingSet(t *testing.T) {
	c := newTestContext()
	c.VLIW = VLIWConfig{WordBits: 32, InstBits: 8, TemplateBits: 4, Nop: []byte{0}, Set: true}
	c.VLIWSet = []VLIWRow{{IdxSet: []int64{5}, Templ: "0"}}
	err := c.PackVLIW([]SubInst{{Idx: 1, Value: big.NewInt(1)}})
	if err == nil {
		t.Error("expected error when no EPIC row matches the index set")
	}
}

func TestPackVLIWMissingConfig(t *testing.T) {
	c := newTestContext()
	err := c.PackVLIW([]SubInst{{Idx: 0, Value: big.NewInt(1)}})
	if err == nil {
		t.Error("expected error when .vliw was never configured")
	}
}
