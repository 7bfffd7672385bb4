/*
	   axx assembly driver test routines - concrete end-to-end scenarios.

		Copyright (c) 2024, Richard Cornwell
*/
package assembler

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func assembleSource(t *testing.T, c *Context, src string) {
	t.Helper()
	dir := t.TempDir()
	path := writeTemp(t, dir, "test.s", src)
	if err := c.AssembleTwoPass(path); err != nil {
		t.Fatalf("AssembleTwoPass: %v", err)
	}
}

func TestScenarioNOP(t *testing.T) {
	c := newTestContext()
	c.Pattern = []Row{{Fields: [6]string{"NOP", "", "0x90", "0", "", ""}}}
	assembleSource(t, c, "nop\n")
	if len(c.Image) != 1 || c.Image[0] != 0x90 {
		t.Errorf("got %s, want [90]", printBytes(c.Image))
	}
	if c.PC != 1 {
		t.Errorf("PC = %d, want 1", c.PC)
	}
}

func TestScenarioMovImmediate(t *testing.T) {
	c := newTestContext()
	c.Pattern = []Row{{Fields: [6]string{"MOV A,!X", "", "0x3E, X", "0", "", ""}}}
	assembleSource(t, c, "mov a,0x42\n")
	want := []byte{0x3E, 0x42}
	if len(c.Image) != 2 || c.Image[0] != want[0] || c.Image[1] != want[1] {
		t.Errorf("got %s, want %s", printBytes(c.Image), printBytes(want))
	}
}

func TestScenarioJumpWithLabel(t *testing.T) {
	c := newTestContext()
	c.Pattern = []Row{{Fields: [6]string{"JMP !X", "", "0xC3, X, X>>8", "0", "", ""}}}
	assembleSource(t, c, "target: .equ 0x1234\njmp target\n")
	want := []byte{0xC3, 0x34, 0x12}
	if len(c.Image) != 3 {
		t.Fatalf("got %s, want 3 bytes", printBytes(c.Image))
	}
	for i, w := range want {
		if c.Image[i] != w {
			t.Errorf("byte %d = %02x, want %02x", i, c.Image[i], w)
		}
	}
}

func TestScenarioOrgWithPadding(t *testing.T) {
	c := newTestContext()
	c.Padding = 0xFF
	c.Pattern = []Row{{Fields: [6]string{"NOP", "", "0x90", "0", "", ""}}}
	assembleSource(t, c, ".org 0x10,P\n")
	if c.PC != 0x10 {
		t.Fatalf("PC = %x, want 10", c.PC)
	}
	if len(c.Image) != 0x10 {
		t.Fatalf("image length = %d, want 16", len(c.Image))
	}
	for i, b := range c.Image {
		if b != 0xFF {
			t.Errorf("byte %d = %02x, want ff", i, b)
		}
	}
}

func TestScenarioAsciiAndAsciiz(t *testing.T) {
	c := newTestContext()
	assembleSource(t, c, ".ascii \"Hi\\n\"\n")
	want := []byte{0x48, 0x69, 0x0A}
	if len(c.Image) != len(want) {
		t.Fatalf("got %s, want %s", printBytes(c.Image), printBytes(want))
	}
	for i, w := range want {
		if c.Image[i] != w {
			t.Errorf("byte %d = %02x, want %02x", i, c.Image[i], w)
		}
	}

	c2 := newTestContext()
	assembleSource(t, c2, ".asciiz \"Hi\"\n")
	want2 := []byte{0x48, 0x69, 0x00}
	for i, w := range want2 {
		if c2.Image[i] != w {
			t.Errorf("asciiz byte %d = %02x, want %02x", i, c2.Image[i], w)
		}
	}
}

func TestDuplicateLabelError(t *testing.T) {
	c := newTestContext()
	c.Pass = Pass1
	if err := c.DefineLabel("foo", big.NewInt(0)); err != nil {
		t.Fatalf("first definition failed: %v", err)
	}
	if err := c.DefineLabel("foo", big.NewInt(0)); err == nil {
		t.Error("second definition of the same label did not error")
	}
}

func TestExportProducesOneRowPerLabel(t *testing.T) {
	c := newTestContext()
	c.Pass = Pass2
	c.Labels["a"] = &Label{Value: big.NewInt(0), Section: ".text"}
	c.Labels["b"] = &Label{Value: big.NewInt(0), Section: ".text"}
	if err := c.ExportLabel("a"); err != nil {
		t.Fatal(err)
	}
	if err := c.ExportLabel("b"); err != nil {
		t.Fatal(err)
	}
	if len(c.ExportLabels) != 2 {
		t.Errorf("exported %d labels, want 2", len(c.ExportLabels))
	}
}

func TestExportUndefinedLabelStillProducesRow(t *testing.T) {
	c := newTestContext()
	c.Pass = Pass2
	if err := c.ExportLabel("never_defined"); err != nil {
		t.Fatalf("ExportLabel: %v", err)
	}
	lbl, ok := c.ExportLabels["never_defined"]
	if !ok {
		t.Fatal("never_defined not present in ExportLabels")
	}
	if lbl.Value.Sign() != 0 {
		t.Errorf("undefined export value = %v, want 0", lbl.Value)
	}
}

func TestUndefinedLabelReportedNotCrashed(t *testing.T) {
	c := newTestContext()
	c.Pattern = []Row{{Fields: [6]string{"JMP !X", "", "0xC3, X, X>>8", "0", "", ""}}}
	assembleSource(t, c, "jmp nowhere\n")
	if !c.ErrorUndefinedLabel {
		t.Error("ErrorUndefinedLabel not set for forward/undefined reference")
	}
	if len(c.Image) != 3 {
		t.Errorf("got %s, want 3 placeholder bytes", printBytes(c.Image))
	}
}
