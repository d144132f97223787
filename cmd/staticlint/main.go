// Package main реализует multichecker — инструмент статического анализа,
// объединяющий несколько групп анализаторов:
//
//   - стандартные анализаторы из golang.org/x/tools/go/analysis/passes
//   - все анализаторы класса SA из staticcheck.io
//   - выборочные анализаторы других классов staticcheck.io (ST1000, QF1000, S1000)
//   - собственный анализатор osexit, запрещающий прямой вызов os.Exit
//     в функции main пакета main
//
// Запуск:
//
//	go run cmd/staticlint/main.go ./...
//
// Анализатор osexit нужен, чтобы программа завершалась с выполнением
// всех defer и освобождением ресурсов, а не обрывалась посреди работы.
package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/asmdecl"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/cgocall"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unsafeptr"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/facts/generated"
	"honnef.co/go/tools/staticcheck"
)

// exitCallChecker запрещает прямые вызовы os.Exit в функции main пакета main
var exitCallChecker = &analysis.Analyzer{
	Name: "osexit",
	Doc:  "check for os.Exit usage in main function of main package",
	Run:  runExitCheck,
	Requires: []*analysis.Analyzer{
		generated.Analyzer,
	},
}

func runExitCheck(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			fn, ok := n.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil {
				return true
			}
			ast.Inspect(fn, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				ident, ok := sel.X.(*ast.Ident)
				if !ok {
					return true
				}
				// Сверяемся с информацией о типах, чтобы не спутать
				// пакет os с одноименной переменной
				if obj := pass.TypesInfo.Uses[ident]; obj != nil {
					if pkg, ok := obj.(*types.PkgName); ok {
						if pkg.Imported().Path() == "os" && sel.Sel.Name == "Exit" {
							pass.Reportf(call.Pos(), "avoid direct os.Exit usage in main function of main package")
						}
					}
				}
				return true
			})
			return true
		})
	}

	return nil, nil
}

func main() {
	analyzers := []*analysis.Analyzer{
		asmdecl.Analyzer,
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		buildtag.Analyzer,
		cgocall.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		shift.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		tests.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unsafeptr.Analyzer,
		unusedresult.Analyzer,
	}

	for _, v := range staticcheck.Analyzers {
		name := v.Analyzer.Name
		switch {
		case strings.HasPrefix(name, "SA"):
			analyzers = append(analyzers, v.Analyzer)
		case name == "ST1000" || name == "QF1000" || name == "S1000":
			analyzers = append(analyzers, v.Analyzer)
		}
	}

	analyzers = append(analyzers, exitCallChecker)

	multichecker.Main(analyzers...)
}
