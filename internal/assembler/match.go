/*
   axx - Pattern matcher (C4).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import "strings"

// optionalGroup is one [[ ... ]] span found while preprocessing a template.
type optionalGroup struct {
	start, end int // byte range in the original template, end exclusive of "]]"
	body       string
}

// MatchRow tries to match src against row's pattern template. On success it
// returns true with Context.Vars populated by whatever captures fired; on
// failure Vars is left as it was (callers also save and restore it around
// each row attempt).
func (c *Context) MatchRow(tmpl, src string) bool {
	groups := findOptionalGroups(tmpl)
	if len(groups) == 0 {
		saved := c.Vars
		if ok, _ := c.matchLinear(tmpl, src); ok {
			return true
		}
		c.Vars = saved
		return false
	}

	n := len(groups)
	for mask := (1 << n) - 1; mask >= 0; mask-- {
		variant := buildVariant(tmpl, groups, mask)
		saved := c.Vars
		if ok, _ := c.matchLinear(variant, src); ok {
			return true
		}
		c.Vars = saved
	}
	return false
}

// findOptionalGroups locates non-nested [[ ... ]] spans in order.
func findOptionalGroups(tmpl string) []optionalGroup {
	var groups []optionalGroup
	i := 0
	for i < len(tmpl) {
		if quick(tmpl, "[[", i) {
			close := strings.Index(tmpl[i+2:], "]]")
			if close < 0 {
				break
			}
			end := i + 2 + close + 2
			groups = append(groups, optionalGroup{start: i, end: end, body: tmpl[i+2 : i+2+close]})
			i = end
			continue
		}
		i++
	}
	return groups
}

// buildVariant reconstructs the template with each optional group either
// included (bit set in mask) or removed (bit clear), copying front to back
// from the original template so every group's byte offsets stay valid.
func buildVariant(tmpl string, groups []optionalGroup, mask int) string {
	var b strings.Builder
	pos := 0
	for idx, g := range groups {
		b.WriteString(tmpl[pos:g.start])
		if mask&(1<<idx) != 0 {
			b.WriteString(g.body)
		}
		pos = g.end
	}
	b.WriteString(tmpl[pos:])
	return b.String()
}

// matchLinear walks tmpl and src together with no backtracking beyond what
// the optional-group enumeration already provides.
func (c *Context) matchLinear(tmpl, src string) (bool, int) {
	ti, si := 0, 0
	for ti < len(tmpl) {
		ti = skipSpace(tmpl, ti)
		if ti >= len(tmpl) {
			break
		}
		si = skipSpace(src, si)

		switch {
		case tmpl[ti] == '\\' && ti+1 < len(tmpl):
			lit := tmpl[ti+1]
			if si >= len(src) || src[si] != lit {
				return false, si
			}
			ti += 2
			si++

		case tmpl[ti] == '!' && ti+2 < len(tmpl) && tmpl[ti+1] == '!' && isVarLetter(tmpl[ti+2]):
			name := tmpl[ti+2]
			saved := c.ExprMode
			c.ExprMode = ExprAssembly
			val, next := c.exprUnary(src, si)
			c.ExprMode = saved
			if next == si {
				return false, si
			}
			c.PutVar(name, val)
			si = next
			ti += 3

		case tmpl[ti] == '!' && ti+1 < len(tmpl) && isVarLetter(tmpl[ti+1]):
			name := tmpl[ti+1]
			ti += 2
			var next int
			if ti+1 < len(tmpl) && tmpl[ti] == '\\' {
				stop := tmpl[ti+1]
				v, nx := c.ExpressionEsc(src, si, ExprAssembly, stop)
				c.PutVar(name, v)
				next = nx
			} else {
				v, nx := c.Expression(src, si, ExprAssembly)
				c.PutVar(name, v)
				next = nx
			}
			if next == si {
				return false, si
			}
			si = next

		case isUpperTemplateLetter(tmpl[ti]):
			if si >= len(src) || upperByte(src[si]) != tmpl[ti] {
				return false, si
			}
			ti++
			si++

		case isLowerTemplateLetter(tmpl[ti]) && !precededByLowerWord(tmpl, ti):
			name, next := c.getSymbolWord(src, si)
			if name == "" {
				return false, si
			}
			if _, ok := c.Symbols[name]; !ok {
				return false, si
			}
			c.PutVar(tmpl[ti], c.Symbols[name])
			si = next
			ti++

		default:
			if si >= len(src) || src[si] != tmpl[ti] {
				return false, si
			}
			ti++
			si++
		}
	}
	return true, si
}

func isVarLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isUpperTemplateLetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isLowerTemplateLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func precededByLowerWord(tmpl string, ti int) bool {
	return ti > 0 && isLowerTemplateLetter(tmpl[ti-1])
}
