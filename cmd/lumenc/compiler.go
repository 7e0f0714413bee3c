package main

import (
	"fmt"
	"os"
	"path/filepath"

	"lumenc/ast"
	"lumenc/codegen"
	"lumenc/depm"
	"lumenc/report"
	"lumenc/sema"
)

// Frontend is the parser the middle-end consumes ASTs from.  Parsing is an
// external collaborator: a frontend build registers itself here before the
// driver runs.
type Frontend interface {
	// ParseModules parses every source file under the module root and
	// returns the module ASTs.
	ParseModules(rootPath string) ([]*ast.ModuleAST, error)
}

// Compiler represents the global state of a compilation: the loaded module
// file, the compilation context, and the analyzed modules.
type Compiler struct {
	// modFile is the loaded and validated module file.
	modFile *depm.ModuleFile

	// ctx is the compilation context shared by every analysis.
	ctx *depm.Context

	// frontend supplies the module ASTs.
	frontend Frontend

	// mods is the list of modules under compilation.
	mods []*depm.Module
}

// NewCompiler creates a compiler rooted at the given module directory.
func NewCompiler(rootRelPath string, frontend Frontend) (*Compiler, error) {
	rootAbsPath, err := filepath.Abs(rootRelPath)
	if err != nil {
		return nil, fmt.Errorf("error calculating absolute path: %s", err)
	}

	modFile, err := depm.LoadModuleFile(rootAbsPath)
	if err != nil {
		return nil, err
	}

	return &Compiler{
		modFile:  modFile,
		ctx:      depm.NewContext(),
		frontend: frontend,
	}, nil
}

// Analyze runs the analysis phase of the compiler: parsing via the frontend,
// then semantic analysis of every module.  It returns whether compilation
// should continue to generation.
func (c *Compiler) Analyze() bool {
	report.DisplayCompileHeader(c.modFile.Name, c.modFile.Config.DebugInfo)

	moduleASTs, err := c.frontend.ParseModules(c.modFile.AbsPath)
	if err != nil {
		report.ReportFatal("parse error: %s", err)
		return false
	}

	for _, moduleAST := range moduleASTs {
		mod := depm.NewModule(moduleAST)
		c.ctx.AddModule(mod)
		c.mods = append(c.mods, mod)
	}

	for _, mod := range c.mods {
		sema.AnalyzeModule(c.ctx, mod)
	}

	return report.ShouldProceed()
}

// Generate runs the generation phase: each module is lowered to an LLVM
// module and, when requested, dumped as textual IR into the output directory.
// Analyze must succeed before this runs.
func (c *Compiler) Generate() bool {
	cfg := c.modFile.Config

	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		report.ReportFatal("unable to create output directory: %s", err)
		return false
	}

	for _, mod := range c.mods {
		g := codegen.NewGenerator(c.ctx, mod)
		llMod := g.Generate()

		if cfg.DumpIR || cfg.ShowGenerated {
			outPath := filepath.Join(cfg.OutputDirectory, mod.Name+".ll")
			if err := os.WriteFile(outPath, []byte(llMod.String()), 0o644); err != nil {
				report.ReportFatal("unable to write IR for module `%s`: %s", mod.Name, err)
				return false
			}

			if cfg.ShowGenerated {
				fmt.Println(llMod.String())
			}
		}
	}

	report.DisplayCompilationFinished(cfg.OutputDirectory)
	return report.ShouldProceed()
}
