/*
 * axx - Main process.
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
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/axx/internal/assembler"
	"github.com/rcornwell/axx/internal/axxlog"
)

var logger *slog.Logger

func main() {
	optOutput := getopt.StringLong("output", 'o', "a.out", "Output binary image")
	optExport := getopt.StringLong("export", 'e', "", "Export labels TSV")
	optExportFlags := getopt.StringLong("export-flags", 'E', "", "Export labels TSV with section flags")
	optImport := getopt.StringLong("import", 'i', "", "Import labels TSV")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Verbose logging")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		logFile, _ = os.Create(*optLogFile)
	}
	if logFile == nil {
		logFile, _ = os.Create(os.DevNull)
	}
	logger = axxlog.New(logFile, *optDebug)
	slog.SetDefault(logger)

	args := getopt.Args()
	if len(args) == 0 {
		logger.Error("a pattern file is required")
		getopt.Usage()
		os.Exit(0)
	}

	ctx := assembler.NewContext(logger)
	if err := ctx.LoadPattern(args[0]); err != nil {
		logger.Error(err.Error())
		os.Exit(0)
	}
	ctx.ProcessPatternDirectives()
	ctx.FreezePatternSymbols()

	if *optImport != "" {
		if err := ctx.LoadImportLabels(*optImport); err != nil {
			logger.Error(err.Error())
		}
	}

	if len(args) == 1 {
		runREPL(ctx)
		return
	}

	if err := ctx.AssembleTwoPass(args[1]); err != nil {
		logger.Error(err.Error())
		os.Exit(0)
	}

	if err := os.WriteFile(*optOutput, ctx.Image, 0o644); err != nil {
		logger.Error(err.Error())
		os.Exit(0)
	}

	if *optExportFlags != "" {
		if err := ctx.WriteExportTSV(*optExportFlags, true); err != nil {
			logger.Error(err.Error())
		}
	} else if *optExport != "" {
		if err := ctx.WriteExportTSV(*optExport, false); err != nil {
			logger.Error(err.Error())
		}
	}
}
