/*
   axx - Two-pass assembly driver (C8).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"bufio"
	"math/big"
	"os"
	"path/filepath"
	"strings"
)

// AssembleTwoPass runs pass 1 (labels only, diagnostics suppressed), resets
// PC/image/sections, then runs pass 2 (emits bytes, prints diagnostics).
// Labels discovered in pass 1 are kept so pass 2's forward references
// resolve.
func (c *Context) AssembleTwoPass(sourcePath string) error {
	c.Pass = Pass1
	if err := c.assembleFileLines(sourcePath); err != nil {
		return err
	}

	c.PC = 0
	c.CurrentSection = ".text"
	for name := range c.Sections {
		delete(c.Sections, name)
	}
	c.Sections[".text"] = &Section{}
	c.Image = nil
	c.ErrorUndefinedLabel = false
	c.ErrorAlreadyDefined = false

	c.Pass = Pass2
	return c.assembleFileLines(sourcePath)
}

// AssembleREPLLine assembles a single line in pass-0 (REPL) mode: behaves
// like pass 2, emitting bytes and logging diagnostics immediately.
func (c *Context) AssembleREPLLine(line string) error {
	c.Pass = PassREPL
	return c.processLine(line)
}

func (c *Context) assembleFileLines(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errInclude("cannot open source file " + path)
	}
	defer f.Close()

	prevFile, prevLine := c.CurrentFile, c.LineNo
	c.CurrentFile = path
	if c.Log != nil {
		c.Log.Debug("assembling", "file", path, "pass", int(c.Pass))
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		c.LineNo = lineNo
		if err := c.processLine(sc.Text()); err != nil {
			c.reportError(err)
		}
	}

	c.CurrentFile, c.LineNo = prevFile, prevLine
	if err := sc.Err(); err != nil {
		return errInclude("error reading source file " + path)
	}
	return nil
}

// processLine implements one iteration of the state machine in 4.8:
// strip comments, collapse whitespace, consume a label prefix, clear
// variable slots, then dispatch to directives or the pattern matcher.
func (c *Context) processLine(raw string) error {
	line := removeCommentAsm(raw)
	line = reduceSpaces(strings.TrimSpace(line))
	if line == "" {
		return nil
	}

	line = c.consumeLabelPrefix(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	c.clearVars()

	if strings.Contains(line, "!!") {
		return c.assembleVLIWLine(line)
	}

	dr, err := c.DispatchDirective(line)
	if err != nil {
		return err
	}
	if dr.Handled {
		if dr.Include != "" {
			return c.includeSource(dr.Include)
		}
		return nil
	}

	return c.matchAndEmit(line)
}

// consumeLabelPrefix recognizes "NAME:" or "NAME: .equ EXPR" at the start
// of line and defines the label, returning whatever remains of the line
// (possibly empty).
func (c *Context) consumeLabelPrefix(line string) string {
	name, next := c.getLabelWord(line, 0)
	if name == "" || next == 0 || line[next-1] != ':' {
		return line
	}
	rest := strings.TrimSpace(line[next:])

	word, tail := splitFirstWord(rest)
	if upper(word) == ".EQU" {
		val, _ := c.Expression(tail, 0, ExprAssembly)
		if err := c.DefineLabel(name, val); err != nil {
			c.reportError(err)
		}
		return ""
	}

	if err := c.DefineLabel(name, big.NewInt(c.PC)); err != nil {
		c.reportError(err)
	}
	return rest
}

// matchAndEmit scans the pattern table for the first row matching line,
// runs its error-code check, and emits its template. A row whose pattern
// is the empty string aborts the scan (marker row).
func (c *Context) matchAndEmit(line string) error {
	for _, row := range c.Pattern {
		if strings.TrimSpace(row.Fields[0]) == "" {
			break
		}
		saved := c.Vars
		if c.MatchRow(row.Fields[0], line) {
			c.checkRowError(row.Fields[1])
			c.EmitTemplate(row.Fields[2])
			return nil
		}
		c.Vars = saved
	}
	return errNoMatch("no pattern matches: " + line)
}

// checkRowError evaluates a pattern row's "cond;code" error field and
// logs the numbered message if cond is non-zero.
func (c *Context) checkRowError(errField string) {
	errField = strings.TrimSpace(errField)
	if errField == "" {
		return
	}
	idx := strings.IndexByte(errField, ';')
	if idx < 0 {
		return
	}
	cond, _ := c.Expression(errField[:idx], 0, ExprPattern)
	if cond.Sign() == 0 {
		return
	}
	code, _ := c.Expression(errField[idx+1:], 0, ExprPattern)
	c.reportRowError(code.Int64())
}

func (c *Context) reportRowError(code int64) {
	msg, ok := errorTable[code]
	if !ok {
		msg = "unspecified error"
	}
	if c.Log != nil && c.Pass != Pass1 {
		c.Log.Error(msg, "code", code, "line", c.LineNo)
	}
}

// errorTable is the fixed numbered message table looked up by a pattern
// row's error field.
var errorTable = map[int64]string{
	0: "value out of range",
	1: "operand too large for field",
	2: "negative value not allowed",
	3: "misaligned operand",
	4: "register out of range",
}

func (c *Context) reportError(err error) {
	if c.Log == nil {
		return
	}
	if c.Pass == Pass1 {
		// Only pass 1 detects a duplicate label, so it is not suppressed.
		if e, ok := err.(*Error); !ok || e.Code != ErrAlreadyDefined {
			c.Log.Debug(err.Error(), "file", c.CurrentFile, "line", c.LineNo)
			return
		}
	}
	c.Log.Error(err.Error(), "file", c.CurrentFile, "line", c.LineNo)
}

// assembleVLIWLine splits a "!!"-separated bundle, matches each
// sub-instruction independently, and packs the results into one VLIW word.
func (c *Context) assembleVLIWLine(line string) error {
	stop := strings.Contains(line, "!!!!")
	if stop {
		line = strings.Replace(line, "!!!!", "", 1)
	}

	var parts []string
	for _, p := range strings.Split(line, "!!") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	c.VCount = int64(len(parts))
	if stop {
		c.VLIWStop = 1
	} else {
		c.VLIWStop = 0
	}

	var subs []SubInst
	for _, part := range parts {
		c.clearVars()
		sub, ok := c.matchSubInstruction(part)
		if !ok {
			continue
		}
		subs = append(subs, sub)
	}
	return c.PackVLIW(subs)
}

func (c *Context) matchSubInstruction(part string) (SubInst, bool) {
	for _, row := range c.Pattern {
		if strings.TrimSpace(row.Fields[0]) == "" {
			break
		}
		saved := c.Vars
		if c.MatchRow(row.Fields[0], part) {
			c.checkRowError(row.Fields[1])
			idxVal, _ := c.Expression(row.Fields[3], 0, ExprPattern)
			instVal := c.EvalInstructionValue(row.Fields[2])
			return SubInst{Idx: idxVal.Int64(), Value: instVal}, true
		}
		c.Vars = saved
	}
	c.reportError(errNoMatch("no pattern matches: " + part))
	return SubInst{}, false
}

// includeSource opens filename (relative to the currently-assembling
// file's directory unless absolute) and assembles it in place.
func (c *Context) includeSource(filename string) error {
	path := filename
	if !filepath.IsAbs(path) && c.CurrentFile != "" {
		path = filepath.Join(filepath.Dir(c.CurrentFile), filename)
	}
	return c.assembleFileLines(path)
}
