/*
   axx - Export/import TSV I/O.

   Copyright (c) 2024, Richard Cornwell
*/

package assembler

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WriteExportTSV writes one row per section (name, start, length, flag)
// when withFlags is true, then one row per exported label (name, value),
// all in hexadecimal.
func (c *Context) WriteExportTSV(path string, withFlags bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errInclude("cannot create export file " + path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if withFlags {
		for name, sec := range c.Sections {
			flag := sectionFlag(name)
			fmt.Fprintf(w, "%s\t%x\t%x\t%s\n", name, sec.Start, sec.Length, flag)
		}
	}
	for name, lbl := range c.ExportLabels {
		fmt.Fprintf(w, "%s\t%x\n", name, lbl.Value)
	}
	return w.Flush()
}

func sectionFlag(name string) string {
	switch name {
	case ".text":
		return "AX"
	case ".data":
		return "WA"
	default:
		return ""
	}
}

// LoadImportLabels reads a TSV of "section\tlabel\tvalue_expr" lines and
// defines each as a label, so a later pass can reference externally
// supplied symbols.
func (c *Context) LoadImportLabels(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errInclude("cannot open import file " + path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		section, name, exprStr := fields[0], fields[1], fields[2]
		val, _ := c.Expression(exprStr, 0, ExprAssembly)
		c.Labels[name] = &Label{Value: val, Section: section}
	}
	return sc.Err()
}
