/*
   axx - Pattern table loader (C3).

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadPattern reads path and any files it recursively .includes, splitting
// each normalized line into up to six ::-separated fields and appending one
// Row per line in input order. Order matters: the matcher is first-match-wins.
func (c *Context) LoadPattern(path string) error {
	return c.loadPatternFile(path)
}

func (c *Context) loadPatternFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errInclude("cannot open pattern file " + path)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := normalizePatternLine(sc.Text())
		if line == "" {
			continue
		}
		if inc, ok := includeTarget(line); ok {
			incPath := inc
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(dir, incPath)
			}
			if err := c.loadPatternFile(incPath); err != nil {
				return err
			}
			continue
		}
		c.Pattern = append(c.Pattern, splitPatternRow(line))
	}
	if err := sc.Err(); err != nil {
		return errInclude("error reading pattern file " + path)
	}
	return nil
}

// normalizePatternLine strips /* */ comments, normalizes tabs/CR, and
// collapses runs of whitespace to a single space.
func normalizePatternLine(l string) string {
	l = strings.ReplaceAll(l, "\r", "")
	l = strings.ReplaceAll(l, "\t", " ")
	l = removeCommentPattern(l)
	l = reduceSpaces(l)
	return strings.TrimSpace(l)
}

// includeTarget reports whether line is a `.include "file"` directive.
func includeTarget(line string) (string, bool) {
	if !strings.HasPrefix(upper(line), ".INCLUDE") {
		return "", false
	}
	rest := strings.TrimSpace(line[len(".include"):])
	return strings.Trim(rest, "\""), true
}

// splitPatternRow splits line on the literal "::" separator into up to six
// right-trimmed fields.
func splitPatternRow(line string) Row {
	parts := strings.SplitN(line, "::", 6)
	var row Row
	for i := 0; i < len(parts) && i < 6; i++ {
		row.Fields[i] = strings.TrimRight(strings.TrimLeft(parts[i], " "), " ")
	}
	return row
}
