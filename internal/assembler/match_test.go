/*
	   axx pattern matcher test routines.

		Copyright (c) 2024, Richard Cornwell
*/
package assembler

import (
	"math/big"
	"testing"
)

func TestMatchLiteralAndExpr(t *testing.T) {
	c := newTestContext()
	ok := c.MatchRow("MOV A,!X", "mov a,0x42")
	if !ok {
		t.Fatal("MOV A,!X did not match 'mov a,0x42'")
	}
	if c.GetVar('X').Int64() != 0x42 {
		t.Errorf("captured X = %s, want 0x42", c.GetVar('X').String())
	}
}

func TestMatchFailsOnMismatch(t *testing.T) {
	c := newTestContext()
	if c.MatchRow("MOV A,!X", "add a,1") {
		t.Error("pattern unexpectedly matched a different mnemonic")
	}
}

func TestMatchFactorCapture(t *testing.T) {
	c := newTestContext()
	ok := c.MatchRow("LDI !!X", "ldi 7")
	if !ok {
		t.Fatal("LDI !!X did not match 'ldi 7'")
	}
	if c.GetVar('X').Int64() != 7 {
		t.Errorf("captured X = %s, want 7", c.GetVar('X').String())
	}
}

func TestMatchSymbolWord(t *testing.T) {
	c := newTestContext()
	c.SetSymbol("R0", big.NewInt(0))
	c.SetSymbol("R1", big.NewInt(1))
	ok := c.MatchRow("MOV r,!X", "mov r1,9")
	if !ok {
		t.Fatal("MOV r,!X did not match 'mov r1,9'")
	}
	if c.GetVar('R').Int64() != 1 {
		t.Errorf("captured r = %s, want 1", c.GetVar('R').String())
	}
	if c.GetVar('X').Int64() != 9 {
		t.Errorf("captured X = %s, want 9", c.GetVar('X').String())
	}
}

func TestMatchUnknownSymbolFails(t *testing.T) {
	c := newTestContext()
	if c.MatchRow("MOV r,!X", "mov zz,9") {
		t.Error("pattern matched an unknown pattern symbol")
	}
}

func TestMatchOptionalGroup(t *testing.T) {
	c := newTestContext()
	if !c.MatchRow("NOP[[ X]]", "nop") {
		t.Error("NOP[[ X]] did not match bare 'nop' (group omitted)")
	}
	c2 := newTestContext()
	if !c2.MatchRow("NOP[[ !X]]", "nop 5") {
		t.Error("NOP[[ !X]] did not match 'nop 5' (group included)")
	}
	if c2.GetVar('X').Int64() != 5 {
		t.Errorf("captured X = %s, want 5", c2.GetVar('X').String())
	}
}
