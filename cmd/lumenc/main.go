package main

import (
	"errors"
	"fmt"
	"os"

	"lumenc/depm"
	"lumenc/report"

	"github.com/ComedicChimera/olive"
)

// frontend is the registered parser.  Frontend builds link a parser package
// and set this in an init function; the middle-end itself never parses.
var frontend Frontend

func main() {
	cli := olive.NewCLI("lumenc", "lumenc is the compiler for the Lumen language", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false,
		[]string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "analyze and compile a module", true)
	buildCmd.AddPrimaryArg("module-path", "the path to the module to build", true)

	checkCmd := cli.AddSubcommand("check", "analyze a module and report errors", true)
	checkCmd.AddPrimaryArg("module-path", "the path to the module to check", true)

	cli.AddSubcommand("version", "print the Lumen version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage error: %s\n", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()

	report.InitReporter(logLevelFromArg(result.Arguments["loglevel"].(string)))

	switch subcmdName {
	case "build":
		execBuild(subResult, true)
	case "check":
		execBuild(subResult, false)
	case "version":
		fmt.Println("lumen v" + depm.LumenVersion)
	}
}

// logLevelFromArg maps a log level argument onto the reporter's levels.
func logLevelFromArg(arg string) int {
	switch arg {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}

// execBuild runs analysis (and optionally generation) on the module at the
// path given by the subcommand's primary argument.
func execBuild(result *olive.ArgParseResult, generate bool) {
	modulePath, _ := result.PrimaryArg()

	if frontend == nil {
		report.ReportFatal("%s", errors.New("no frontend registered in this build of lumenc"))
		return
	}

	c, err := NewCompiler(modulePath, frontend)
	if err != nil {
		report.ReportFatal("%s", err)
		return
	}

	if !c.Analyze() {
		os.Exit(1)
	}

	if generate && !c.Generate() {
		os.Exit(1)
	}
}
