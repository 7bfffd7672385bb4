/*
   axx - Label and pattern-symbol tables (C7).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import "math/big"

// FreezePatternSymbols snapshots the current symbol-table keys as the
// frozen pattern-symbol namespace, used afterward to reject labels that
// shadow a pattern symbol. Called once after the pattern file finishes
// loading.
func (c *Context) FreezePatternSymbols() {
	for name := range c.Symbols {
		c.PatSymbols[name] = struct{}{}
	}
}

// DefineLabel records name = value in section at the current PC's section.
// A label that shadows a frozen pattern symbol is rejected in every pass.
// Pass 1 also rejects a second definition of an existing label; pass 2/REPL
// simply overwrite (the value should already match pass 1's).
func (c *Context) DefineLabel(name string, value *big.Int) error {
	if _, shadow := c.PatSymbols[name]; shadow {
		return errShadow("label " + name + " shadows a pattern symbol")
	}
	if c.Pass == Pass1 {
		if _, exists := c.Labels[name]; exists {
			c.ErrorAlreadyDefined = true
			return errAlreadyDefined("label " + name + " already defined")
		}
	}
	c.Labels[name] = &Label{Value: new(big.Int).Set(value), Section: c.CurrentSection}
	return nil
}

// LookupLabel returns a label's value and whether it is defined.
func (c *Context) LookupLabel(name string) (*big.Int, bool) {
	lbl, ok := c.Labels[name]
	if !ok {
		return nil, false
	}
	return lbl.Value, true
}

// ExportLabel marks name for TSV export, producing one row regardless of
// whether name was ever defined: an undefined export still gets a row
// holding the zero value, matching the original's UNDEF-sentinel export
// behavior rather than dropping the token.
func (c *Context) ExportLabel(name string) error {
	lbl, ok := c.Labels[name]
	if !ok {
		if c.Log != nil {
			c.Log.Warn("exporting undefined label", "name", name)
		}
		lbl = &Label{Value: big.NewInt(0)}
	}
	c.ExportLabels[name] = lbl
	return nil
}

// SetSymbol defines or overwrites a pattern symbol (.setsym).
func (c *Context) SetSymbol(name string, value *big.Int) {
	c.Symbols[name] = new(big.Int).Set(value)
}

// ClearSymbol removes a pattern symbol (.clearsym).
func (c *Context) ClearSymbol(name string) {
	delete(c.Symbols, name)
}
