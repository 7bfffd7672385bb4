/*
	   axx pattern table loader test routines.

		Copyright (c) 2024, Richard Cornwell
*/
package assembler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPatternSplitsFields(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "isa.pat", "NOP :: :: 0x90 :: 0 ::  :: \n")

	c := newTestContext()
	if err := c.LoadPattern(path); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 1 {
		t.Fatalf("loaded %d rows, want 1", len(c.Pattern))
	}
	row := c.Pattern[0]
	if row.Fields[0] != "NOP" {
		t.Errorf("field 0 = %q, want NOP", row.Fields[0])
	}
	if row.Fields[2] != "0x90" {
		t.Errorf("field 2 = %q, want 0x90", row.Fields[2])
	}
	if row.Fields[3] != "0" {
		t.Errorf("field 3 = %q, want 0", row.Fields[3])
	}
}

func TestLoadPatternStripsComments(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "isa.pat", "NOP :: :: 0x90 :: 0 /* the idle op */\n")

	c := newTestContext()
	if err := c.LoadPattern(path); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 1 {
		t.Fatalf("loaded %d rows, want 1", len(c.Pattern))
	}
	if got := c.Pattern[0].Fields[3]; got != "0" {
		t.Errorf("field 3 = %q, want 0 (trailing comment stripped)", got)
	}
}

func TestLoadPatternBlankLinesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "isa.pat", "\n\nNOP :: :: 0x90 :: 0\n\n")

	c := newTestContext()
	if err := c.LoadPattern(path); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 1 {
		t.Fatalf("loaded %d rows, want 1 (blank lines skipped)", len(c.Pattern))
	}
}

func TestLoadPatternIncludeSplicesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "alu.pat", "ADD !X :: :: 0x04, X :: 0\n")
	mainPath := writeTemp(t, dir, "isa.pat",
		"NOP :: :: 0x90 :: 0\n.include \"alu.pat\"\nHLT :: :: 0x76 :: 0\n")

	c := newTestContext()
	if err := c.LoadPattern(mainPath); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 3 {
		t.Fatalf("loaded %d rows, want 3", len(c.Pattern))
	}
	if c.Pattern[0].Fields[0] != "NOP" || c.Pattern[1].Fields[0] != "ADD !X" || c.Pattern[2].Fields[0] != "HLT" {
		t.Errorf("rows out of order: %v / %v / %v",
			c.Pattern[0].Fields[0], c.Pattern[1].Fields[0], c.Pattern[2].Fields[0])
	}
}

func TestLoadPatternMissingIncludeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "isa.pat", ".include \"missing.pat\"\n")

	c := newTestContext()
	if err := c.LoadPattern(path); err == nil {
		t.Error("expected error for missing include file")
	}
}

func TestLoadPatternNormalizesTabsAndCR(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "isa.pat", "NOP\t::\t::\t0x90\t::\t0\r\n")

	c := newTestContext()
	if err := c.LoadPattern(path); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 1 || c.Pattern[0].Fields[2] != "0x90" {
		t.Errorf("tab-delimited row not normalized: %+v", c.Pattern)
	}
}

func TestIncludeTargetRecognizesDirective(t *testing.T) {
	if _, ok := includeTarget("NOP :: :: 0x90 :: 0"); ok {
		t.Error("ordinary row misidentified as an include directive")
	}
	name, ok := includeTarget(".include \"sub.pat\"")
	if !ok || name != "sub.pat" {
		t.Errorf("includeTarget = %q, %v, want sub.pat, true", name, ok)
	}
}

func TestLoadPatternRelativeIncludeResolvesAgainstParentDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTemp(t, sub, "ext.pat", "HLT :: :: 0x76 :: 0\n")
	mainPath := writeTemp(t, dir, "isa.pat", ".include \"sub/ext.pat\"\n")

	c := newTestContext()
	if err := c.LoadPattern(mainPath); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if len(c.Pattern) != 1 || c.Pattern[0].Fields[0] != "HLT" {
		t.Errorf("relative include did not resolve: %+v", c.Pattern)
	}
}
