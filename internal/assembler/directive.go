/*
   axx - Directive dispatcher (C6): pattern-side directives processed once
   at load time, and assembly-side directives dispatched per source line.

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"math/big"
	"strings"
)

// ProcessPatternDirectives scans the freshly loaded pattern table for
// configuration rows (.setsym, .clearsym, .bits, .padding, .symbolc,
// .vliw, EPIC) and executes them in order, leaving only genuine
// instruction-matching rows in Context.Pattern.
func (c *Context) ProcessPatternDirectives() {
	var kept []Row
	for _, row := range c.Pattern {
		token, rest := splitFirstWord(row.Fields[0])
		switch upper(token) {
		case ".SETSYM":
			name, exprPart := splitFirstWord(rest)
			v, _ := c.Expression(exprPart, 0, ExprPattern)
			c.SetSymbol(upper(name), v)
		case ".CLEARSYM":
			c.ClearSymbol(upper(strings.TrimSpace(rest)))
		case ".BITS":
			c.applyBitsDirective(rest)
		case ".PADDING":
			_, exprPart := splitFirstWord(rest)
			v, _ := c.Expression(exprPart, 0, ExprPattern)
			c.Padding = v.Int64()
		case ".SYMBOLC":
			_, chars := splitFirstWord(rest)
			c.SWordChars += strings.TrimSpace(chars)
		case ".VLIW":
			c.applyVLIWDirective(rest)
		case "EPIC":
			c.applyEPICRow(row.Fields[0], row.Fields[1])
		default:
			kept = append(kept, row)
		}
	}
	c.Pattern = kept
}

func (c *Context) applyBitsDirective(rest string) {
	rest = strings.TrimSpace(rest)
	first, tail := splitFirstWord(rest)
	switch upper(first) {
	case "BIG":
		c.Endian = Big
		rest = tail
	case "LITTLE":
		c.Endian = Little
		rest = tail
	}
	n, _ := c.Expression(strings.TrimSpace(rest), 0, ExprPattern)
	if n.Sign() != 0 || rest != "" {
		c.Bits = n.Int64()
	}
}

func (c *Context) applyVLIWDirective(rest string) {
	fields := strings.Fields(rest)
	if len(fields) < 4 {
		return
	}
	word, _ := c.Expression(fields[0], 0, ExprPattern)
	inst, _ := c.Expression(fields[1], 0, ExprPattern)
	tmpl, _ := c.Expression(fields[2], 0, ExprPattern)
	nop, _ := c.Expression(fields[3], 0, ExprPattern)
	c.VLIW = VLIWConfig{
		WordBits:     word.Int64(),
		InstBits:     inst.Int64(),
		TemplateBits: tmpl.Int64(),
		Nop:          nop.Bytes(),
		Set:          true,
	}
}

func (c *Context) applyEPICRow(idxsField, templField string) {
	_, idxPart := splitFirstWord(idxsField)
	var idxset []int64
	for _, tok := range strings.Split(idxPart, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, _ := c.Expression(tok, 0, ExprPattern)
		idxset = append(idxset, v.Int64())
	}
	c.VLIWSet = append(c.VLIWSet, VLIWRow{IdxSet: idxset, Templ: strings.TrimSpace(templField)})
}

// splitFirstWord returns the first whitespace-delimited token of s and the
// remainder (with leading space trimmed).
func splitFirstWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// DirectiveResult reports what an assembly-side directive did, so the
// driver can react (open an .include target).
type DirectiveResult struct {
	Handled bool
	Include string // non-empty if this was a .include "file"
}

// DispatchDirective handles every assembly-side directive except label
// definitions, which the driver processes before calling this. line has
// already had comments stripped and whitespace collapsed.
func (c *Context) DispatchDirective(line string) (DirectiveResult, error) {
	word, rest := splitFirstWord(line)
	switch upper(word) {
	case "SECTION", "SEGMENT":
		c.openSection(strings.TrimSpace(rest))
		return DirectiveResult{Handled: true}, nil

	case "ENDSECTION", "ENDSEGMENT":
		return DirectiveResult{Handled: true}, c.endSection()

	case ".ORG":
		return DirectiveResult{Handled: true}, c.doOrg(rest)

	case ".ALIGN":
		return DirectiveResult{Handled: true}, c.doAlign(rest)

	case ".ZERO":
		return DirectiveResult{Handled: true}, c.doZero(rest)

	case ".ASCII":
		return DirectiveResult{Handled: true}, c.doAscii(rest, false)

	case ".ASCIIZ":
		return DirectiveResult{Handled: true}, c.doAscii(rest, true)

	case ".INCLUDE":
		name := getQuotedString(rest)
		if name == "" {
			return DirectiveResult{Handled: true}, errBadDirective(".include requires a quoted filename")
		}
		return DirectiveResult{Handled: true, Include: name}, nil

	case ".EXPORT":
		return DirectiveResult{Handled: true}, c.doExport(rest)

	case ".LABELC":
		c.LWordChars += strings.TrimSpace(rest)
		return DirectiveResult{Handled: true}, nil
	}
	return DirectiveResult{}, nil
}

func (c *Context) openSection(name string) {
	if name == "" {
		return
	}
	c.Sections[name] = &Section{Start: c.PC}
	c.CurrentSection = name
}

func (c *Context) endSection() error {
	sec, ok := c.Sections[c.CurrentSection]
	if !ok {
		return errUnknownSection("endsection: no section is open")
	}
	sec.Length = c.PC - sec.Start
	return nil
}

func (c *Context) doOrg(rest string) error {
	parts := splitTopLevelComma(rest)
	val, _ := c.Expression(parts[0], 0, ExprAssembly)
	target := val.Int64()
	pad := len(parts) > 1 && upper(strings.TrimSpace(parts[1])) == "P"
	if pad {
		for c.PC < target {
			c.writeUnit(big.NewInt(c.Padding))
		}
	}
	c.PC = target
	return nil
}

func (c *Context) doAlign(rest string) error {
	val, _ := c.Expression(rest, 0, ExprAssembly)
	c.Align = val.Int64()
	c.alignPad()
	return nil
}

func (c *Context) doZero(rest string) error {
	val, _ := c.Expression(rest, 0, ExprAssembly)
	n := val.Int64() + 1
	for i := int64(0); i < n; i++ {
		c.writeUnit(big.NewInt(0))
	}
	return nil
}

func (c *Context) doAscii(rest string, nulTerm bool) error {
	str := unescapeAscii(getQuotedString(rest))
	for i := 0; i < len(str); i++ {
		c.writeUnit(big.NewInt(int64(str[i])))
	}
	if nulTerm {
		c.writeUnit(big.NewInt(0))
	}
	return nil
}

func (c *Context) doExport(rest string) error {
	var firstErr error
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if err := c.ExportLabel(tok); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// unescapeAscii interprets \0, \t, \n inside a .ascii/.asciiz string body.
func unescapeAscii(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '0':
				b.WriteByte(0)
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
