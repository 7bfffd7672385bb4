/*
 * axx - REPL console (pass 0).
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"errors"
	"fmt"

	"github.com/peterh/liner"

	"github.com/rcornwell/axx/internal/assembler"
)

// runREPL reads one line at a time until EOF, assembling it immediately
// as pass 0 (behaves like pass 2). "?" dumps the label table.
func runREPL(ctx *assembler.Context) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return nil
	})

	for {
		fmt.Printf("address: %x\n", ctx.PC)
		command, err := line.Prompt(">> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			logger.Error("error reading line: " + err.Error())
			return
		}
		line.AppendHistory(command)

		if command == "?" {
			for name, lbl := range ctx.Labels {
				fmt.Printf("%s = %x\n", name, lbl.Value)
			}
			continue
		}

		if err := ctx.AssembleREPLLine(command); err != nil {
			fmt.Println("Error: " + err.Error())
		}
	}
}
