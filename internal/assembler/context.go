/*
   axx - Assembler context.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package assembler implements the table-driven assembly engine: the
// expression evaluator, pattern table loader, pattern matcher, object
// emitter, directive dispatcher, label/symbol tables, two-pass driver and
// VLIW bundle packer. One Context value owns all mutable state for a run.
package assembler

import (
	"log/slog"
	"math/big"
)

// Pass identifies which traversal of the source is in progress.
type Pass int

const (
	// PassREPL is pass 0: interactive, one line at a time, behaves like pass 2.
	PassREPL Pass = 0
	// Pass1 discovers labels; diagnostics are suppressed and output is not written.
	Pass1 Pass = 1
	// Pass2 emits bytes and prints diagnostics.
	Pass2 Pass = 2
)

// ExprMode selects which token set the expression evaluator recognizes.
type ExprMode int

const (
	// ExprPattern additionally recognizes !!! (sub-instruction count) and
	// !!!! (VLIW stop bit) inside exprPrimary.
	ExprPattern ExprMode = iota
	// ExprAssembly is the plain source-side expression grammar.
	ExprAssembly
)

// Endian selects byte order used by writeUnit when splitting a unit into bytes.
type Endian int

const (
	Little Endian = iota
	Big
)

// Section is a named, contiguous region of the output image.
type Section struct {
	Start  int64
	Length int64
}

// Label is a source-defined name resolving to a section-relative address.
type Label struct {
	Value   *big.Int
	Section string
}

// Row is one pattern-table entry: (pattern, error, emit, idxs, extra1, extra2).
// Directive rows reuse the same six positional fields.
type Row struct {
	Fields [6]string
}

// VLIWConfig holds the `.vliw word inst tmpl nop` configuration.
type VLIWConfig struct {
	WordBits     int64 // sign: MSB-first (>0) vs LSB-first (<0) whole-word emission
	InstBits     int64
	TemplateBits int64 // sign: template in low bits (>0) vs high bits (<0)
	Nop          []byte
	Set          bool
}

// VLIWRow is one `EPIC idxset :: tmplexpr` row.
type VLIWRow struct {
	IdxSet []int64
	Templ  string
}

// Context is the single owned value threaded through every assembler
// operation in place of package-level mutable globals.
type Context struct {
	PC      int64
	Align   int64
	Padding int64

	Bits   int64
	Endian Endian

	CurrentSection string
	Sections       map[string]*Section

	Symbols    map[string]*big.Int // pattern-provided symbol table
	PatSymbols map[string]struct{} // frozen names, set once pattern load completes

	Labels       map[string]*Label
	ExportLabels map[string]*Label

	Pattern []Row

	Vars [26]*big.Int

	VLIW     VLIWConfig
	VLIWSet  []VLIWRow
	VLIWStop int64
	VCount   int64

	ExprMode ExprMode

	LWordChars string
	SWordChars string

	ErrorUndefinedLabel bool
	ErrorAlreadyDefined bool

	Pass Pass

	Image []byte // growable output buffer, indexed by absolute unit position

	CurrentFile string
	LineNo      int

	Log *slog.Logger
}

// NewContext returns a Context with the engine's default configuration:
// 8-bit little-endian units, 16-byte alignment, section ".text" current.
func NewContext(log *slog.Logger) *Context {
	c := &Context{
		Align:          16,
		Bits:           8,
		Endian:         Little,
		CurrentSection: ".text",
		Sections:       map[string]*Section{".text": {}},
		Symbols:        map[string]*big.Int{},
		PatSymbols:     map[string]struct{}{},
		Labels:         map[string]*Label{},
		ExportLabels:   map[string]*Label{},
		LWordChars:     digitChars + alphabetChars + "_.",
		SWordChars:     digitChars + alphabetChars + "_%$-~&|",
		VCount:         1,
		VLIW:           VLIWConfig{WordBits: 128, InstBits: 41},
		Log:            log,
	}
	c.clearVars()
	return c
}

func (c *Context) clearVars() {
	for i := range c.Vars {
		c.Vars[i] = big.NewInt(0)
	}
}

// GetVar reads variable slot named by a single letter (case-insensitive).
func (c *Context) GetVar(letter byte) *big.Int {
	idx := upperByte(letter) - 'A'
	if idx > 25 {
		return big.NewInt(0)
	}
	return c.Vars[idx]
}

// PutVar writes variable slot named by a single letter (case-insensitive).
func (c *Context) PutVar(letter byte, v *big.Int) {
	u := upperByte(letter)
	if u < 'A' || u > 'Z' {
		return
	}
	c.Vars[u-'A'] = new(big.Int).Set(v)
}

// ensureImage grows the output buffer so offset o is writable.
func (c *Context) ensureImage(o int) {
	if o < len(c.Image) {
		return
	}
	grown := make([]byte, o+1)
	copy(grown, c.Image)
	c.Image = grown
}

// readImageByte returns the byte already emitted at offset o, or 0 if
// nothing has been written there yet (pass 1, or before the write).
func (c *Context) readImageByte(o int) byte {
	if o < 0 || o >= len(c.Image) {
		return 0
	}
	return c.Image[o]
}
