package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

var (
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = pterm.FgLightGreen
)

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	errorStyleBG.Print("Internal Compiler Error")
	errorColorFG.Printf(" %s\n", message)
	fmt.Print("This error was not supposed to happen: please open an issue on the Lumen issue tracker\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	errorStyleBG.Print("Fatal Error")
	errorColorFG.Printf(" %s\n\n", message)
}

// displayDiagnostic displays a compilation error or warning together with the
// source text it refers to.
func displayDiagnostic(d *Diagnostic) {
	displayBanner(d)

	fmt.Println(d.Message)

	for _, related := range d.Related {
		fmt.Println("  " + related)
	}

	if d.Span != nil && d.AbsPath != "" {
		fmt.Printf("\n%s:%d:%d:\n", d.ReprPath, d.Span.StartLine+1, d.Span.StartCol+1)
		displaySourceText(d.AbsPath, d.Span)
	} else {
		fmt.Println()
	}
}

// displayBanner displays the banner on top of a compilation message.
func displayBanner(d *Diagnostic) {
	fmt.Print("\n-- ")

	kindStr := strings.Title(d.Kind.String())
	kindLen := len(kindStr)
	if d.IsError {
		errorStyleBG.Print(kindStr)
	} else {
		warnStyleBG.Print(kindStr + " Warning")
		kindLen += 8
	}

	fmt.Print(" ")

	fileName := filepath.Base(d.ReprPath)
	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(fileName) - kindLen - 1
	if dashCount < 3 {
		dashCount = 3
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	infoColorFG.Println(fileName)
}

// DisplayCompileHeader displays the pre-compilation header: information about
// the compiler's current configuration.
func DisplayCompileHeader(target string, debug bool) {
	if rep.logLevel == LogLevelVerbose {
		successStyleBG.Print("Lumen")
		infoColorFG.Printf(" compiling for %s (debug=%v)\n", target, debug)
	}
}

// DisplayCompilationFinished displays the concluding message for compilation.
func DisplayCompilationFinished(outputPath string) {
	if rep.logLevel == LogLevelVerbose {
		if ShouldProceed() {
			successStyleBG.Print("Done")
			infoColorFG.Printf(" output written to %s\n", outputPath)
		} else {
			errorStyleBG.Print("Failed")
			errorColorFG.Printf(" compilation finished with errors\n")
		}
	}
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
func displaySourceText(absPath string, span *TextSpan) {
	// Open the file so we can read the desired source text.
	file, err := os.Open(absPath)
	if err != nil {
		// The file may have vanished between parsing and reporting.  The
		// message is still useful without the source excerpt.
		fmt.Println()
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if err := sc.Err(); err != nil || len(lines) == 0 {
		fmt.Println()
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	// Calculate the maximum line number length.
	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))

	// Generate the format string for line numbers.
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		// Print the line number and separator bar.
		fmt.Printf(lineNumFmtStr, i+span.StartLine+1)

		// Print the source text with the leading indent trimmed off.
		fmt.Println(line[minIndent:])

		// Print the line and bar used for the line for carret underlining.
		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// For any line which is not the starting line, underlining continues
		// from the previous line and so starts at column zero.
		var carretPrefixCount int
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		}

		// For all lines except the last line, underlining spans to the end of
		// the line and over onto the next line.
		var carretSuffixCount int
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol - 1
		}

		fmt.Print(strings.Repeat(" ", carretPrefixCount))

		carretCount := len(line) - carretSuffixCount - carretPrefixCount - minIndent
		if carretCount < 1 {
			carretCount = 1
		}

		fmt.Println(strings.Repeat("^", carretCount))
	}

	// Print the final newline after the error message.
	fmt.Println()
}
