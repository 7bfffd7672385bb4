/*
   axx - VLIW bundle packer (C9).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import "math/big"

// SubInst is one sub-pattern's matched result inside a "!!"-separated
// bundle: the idxs_expr value identifying which pattern row matched, and
// the instruction's encoded value (assumed to be a single inst_bits-wide
// integer, produced by evaluating the row's emit template as one value).
type SubInst struct {
	Idx   int64
	Value *big.Int
}

// PackVLIW assembles subs into one bundle word and writes it at the
// current PC. It fails if .vliw was never configured, or if the template
// width is non-zero and no EPIC row's index set matches the
// sub-instructions actually present.
func (c *Context) PackVLIW(subs []SubInst) error {
	if !c.VLIW.Set {
		return errNoVLIW("no .vliw configuration")
	}

	tmplBits := c.VLIW.TemplateBits
	absTmplBits := absInt64(tmplBits)

	templ := big.NewInt(0)
	if tmplBits != 0 {
		idxset := make([]int64, len(subs))
		for i, s := range subs {
			idxset[i] = s.Idx
		}
		row, ok := c.findVLIWRow(idxset)
		if !ok {
			return errVLIWSet("No vliw instruction-set defined.")
		}
		v, _ := c.Expression(row.Templ, 0, ExprPattern)
		templ = v
	}

	wordBits := absInt64(c.VLIW.WordBits)
	noi := 0
	if c.VLIW.InstBits > 0 {
		noi = int((wordBits - absTmplBits) / c.VLIW.InstBits)
	}

	nopVal := new(big.Int).SetBytes(c.VLIW.Nop)

	word := new(big.Int)
	for i := 0; i < noi; i++ {
		var slot *big.Int
		if i < len(subs) {
			slot = maskBits(subs[i].Value, c.VLIW.InstBits)
		} else {
			slot = maskBits(nopVal, c.VLIW.InstBits)
		}
		word.Lsh(word, uint(c.VLIW.InstBits))
		word.Or(word, slot)
	}

	switch {
	case tmplBits > 0:
		word.Lsh(word, uint(absTmplBits))
		word.Or(word, maskBits(templ, absTmplBits))
	case tmplBits < 0:
		shift := wordBits - absTmplBits
		shifted := new(big.Int).Lsh(maskBits(templ, absTmplBits), uint(shift))
		word.Or(word, shifted)
	}

	c.writeVLIWWord(word, wordBits, c.VLIW.WordBits > 0)
	return nil
}

func (c *Context) findVLIWRow(idxset []int64) (VLIWRow, bool) {
	for _, row := range c.VLIWSet {
		if sameIdxSet(row.IdxSet, idxset) {
			return row, true
		}
	}
	return VLIWRow{}, false
}

func sameIdxSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	counts := map[int64]int{}
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}

// writeVLIWWord writes a wordBits-wide value at the current PC. msbFirst
// selects whole-word MSB-first emission (word_bits > 0) vs LSB-first
// (word_bits < 0).
func (c *Context) writeVLIWWord(word *big.Int, wordBits int64, msbFirst bool) {
	nbytes := int((wordBits + 7) / 8)
	if nbytes < 1 {
		nbytes = 1
	}
	masked := maskBits(word, wordBits)

	lsb := make([]byte, nbytes)
	tmp := new(big.Int).Set(masked)
	mask := big.NewInt(0xFF)
	for i := 0; i < nbytes; i++ {
		b := new(big.Int).And(tmp, mask)
		lsb[i] = byte(b.Int64())
		tmp.Rsh(tmp, 8)
	}

	buf := make([]byte, nbytes)
	if msbFirst {
		for i := 0; i < nbytes; i++ {
			buf[i] = lsb[nbytes-1-i]
		}
	} else {
		copy(buf, lsb)
	}

	pos := int(c.PC)
	c.ensureImage(pos + nbytes - 1)
	copy(c.Image[pos:pos+nbytes], buf)
	c.PC += int64(nbytes)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// EvalInstructionValue evaluates a sub-pattern's emit template as a single
// instruction-wide integer (no comma splitting, no byte-level writes) -
// used to build SubInst.Value for a "!!"-separated bundle member.
func (c *Context) EvalInstructionValue(tmpl string) *big.Int {
	expanded := replaceCounters(c.expandRep(tmpl))
	items := splitTopLevelComma(expanded)
	if len(items) == 0 {
		return big.NewInt(0)
	}
	v, _ := c.Expression(items[0], 0, ExprPattern)
	return v
}
