/*
   axx - Object emitter (C5).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"math/big"
	"strings"
)

// EmitTemplate expands rep[]/%% in tmpl, evaluates the resulting
// comma-separated items in pattern mode, and writes one output unit per
// item at the current PC, advancing PC as it goes. A ";expr" item is
// emitted only when expr is non-zero; a bare empty item between commas
// pads to the current alignment boundary.
func (c *Context) EmitTemplate(tmpl string) {
	expanded := c.expandRep(tmpl)
	expanded = replaceCounters(expanded)

	for _, raw := range splitTopLevelComma(expanded) {
		item := strings.TrimSpace(raw)
		switch {
		case item == "":
			c.alignPad()
		case strings.HasPrefix(item, ";"):
			val, _ := c.Expression(item[1:], 0, ExprPattern)
			if val.Sign() != 0 {
				c.writeUnit(val)
			}
		default:
			val, _ := c.Expression(item, 0, ExprPattern)
			c.writeUnit(val)
		}
	}
}

// expandRep textually expands rep[count, body] n times, joined by commas.
// Nesting is handled by expanding the body before duplicating it. %% tokens
// are left untouched here; they are resolved in one left-to-right pass
// after all rep[] expansion, so every repeated occurrence gets its own
// counter value.
func (c *Context) expandRep(s string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if quick(s, "rep[", i) {
			j := i + 4
			depth := 1
			start := j
			end := j
			for end < len(s) && depth > 0 {
				switch s[end] {
				case '[':
					depth++
				case ']':
					depth--
					if depth == 0 {
						goto found
					}
				}
				end++
			}
		found:
			content := s[start:end]
			i = end + 1
			commaIdx := findTopLevelCommaIndex(content)
			if commaIdx < 0 {
				continue
			}
			countExpr := content[:commaIdx]
			body := c.expandRep(content[commaIdx+1:])
			nBig, _ := c.Expression(countExpr, 0, ExprPattern)
			n := int(nBig.Int64())
			pieces := make([]string, 0, n)
			for k := 0; k < n; k++ {
				pieces = append(pieces, body)
			}
			out.WriteString(strings.Join(pieces, ","))
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

// replaceCounters substitutes each %% occurrence, left to right, with an
// incrementing decimal counter starting at 0, scoped to this one call.
func replaceCounters(s string) string {
	var out strings.Builder
	counter := 0
	i := 0
	for i < len(s) {
		if quick(s, "%%", i) {
			out.WriteString(itoa(counter))
			counter++
			i += 2
			continue
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// findTopLevelCommaIndex finds the first comma not nested inside ( ) or [ ].
func findTopLevelCommaIndex(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevelComma splits s on commas not nested inside ( ) or [ ].
func splitTopLevelComma(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// alignPad emits padding units until PC is a multiple of Align.
func (c *Context) alignPad() {
	if c.Align <= 0 {
		return
	}
	for c.PC%c.Align != 0 {
		c.writeUnit(big.NewInt(c.Padding))
	}
}

// writeUnit writes one output unit of width Bits at the current PC,
// splitting it into bytes per Endian, and advances PC by one unit. The
// unit lands at byte offset PC times the unit's byte count. Units narrower
// than 8 bits are still stored as one byte.
func (c *Context) writeUnit(v *big.Int) {
	nbytes := int((c.Bits + 7) / 8)
	if nbytes < 1 {
		nbytes = 1
	}
	masked := maskBits(v, int64(nbytes)*8)

	lsb := make([]byte, nbytes)
	tmp := new(big.Int).Set(masked)
	mask := big.NewInt(0xFF)
	for i := 0; i < nbytes; i++ {
		b := new(big.Int).And(tmp, mask)
		lsb[i] = byte(b.Int64())
		tmp.Rsh(tmp, 8)
	}

	buf := make([]byte, nbytes)
	if c.Endian == Little {
		copy(buf, lsb)
	} else {
		for i := 0; i < nbytes; i++ {
			buf[i] = lsb[nbytes-1-i]
		}
	}

	pos := int(c.PC) * nbytes
	c.ensureImage(pos + nbytes - 1)
	copy(c.Image[pos:pos+nbytes], buf)
	c.PC++
}
