/*
	   axx directive dispatcher test routines.

		Copyright (c) 2024, Richard Cornwell
*/
package assembler

import "testing"

func TestEndSectionWithoutOpenSectionErrors(t *testing.T) {
	c := newTestContext()
	delete(c.Sections, c.CurrentSection)
	if _, err := c.DispatchDirective("endsection"); err == nil {
		t.Error("endsection with no matching open section did not error")
	}
}

func TestSectionThenEndSectionRecordsLength(t *testing.T) {
	c := newTestContext()
	if _, err := c.DispatchDirective("section .data"); err != nil {
		t.Fatalf("section: %v", err)
	}
	c.PC = 8
	if _, err := c.DispatchDirective("endsection"); err != nil {
		t.Fatalf("endsection: %v", err)
	}
	sec := c.Sections[".data"]
	if sec == nil || sec.Length != 8 {
		t.Errorf("section .data length = %+v, want 8", sec)
	}
}

func TestIncludeDirectiveRequiresFilename(t *testing.T) {
	c := newTestContext()
	if _, err := c.DispatchDirective(".include"); err == nil {
		t.Error(".include with no filename did not error")
	}
	dr, err := c.DispatchDirective(`.include "foo.s"`)
	if err != nil {
		t.Fatalf(".include with filename errored: %v", err)
	}
	if dr.Include != "foo.s" {
		t.Errorf("Include = %q, want foo.s", dr.Include)
	}
}

func TestUnrecognizedWordFallsThroughToMatcher(t *testing.T) {
	c := newTestContext()
	dr, err := c.DispatchDirective("mov a,1")
	if err != nil || dr.Handled {
		t.Errorf("ordinary mnemonic line should not be treated as a directive: %+v, %v", dr, err)
	}
}
