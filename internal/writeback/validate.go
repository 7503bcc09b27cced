package writeback

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ValidationError is one syntax error. FilePath names the file, or the
// language for inline scripts. Line and Column are 0-indexed.
type ValidationError struct {
	FilePath string
	Line     uint32
	Column   uint32
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line+1, e.Column+1, e.Message)
}

var (
	byExtension = map[string]func() *sitter.Language{
		".go":  golang.GetLanguage,
		".py":  python.GetLanguage,
		".js":  javascript.GetLanguage,
		".mjs": javascript.GetLanguage,
		".ts":  typescript.GetLanguage,
		".tsx": typescript.GetLanguage,
	}
	// byName covers <?language?> names and script MIME subtypes.
	byName = map[string]func() *sitter.Language{
		"javascript": javascript.GetLanguage,
		"js":         javascript.GetLanguage,
		"ecmascript": javascript.GetLanguage,
		"nashorn":    javascript.GetLanguage,
		"graal.js":   javascript.GetLanguage,
		"typescript": typescript.GetLanguage,
		"ts":         typescript.GetLanguage,
		"python":     python.GetLanguage,
		"jython":     python.GetLanguage,
		"go":         golang.GetLanguage,
	}
)

func languageForPath(filePath string) *sitter.Language {
	if f, ok := byExtension[strings.ToLower(filepath.Ext(filePath))]; ok {
		return f()
	}
	return nil
}

func languageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "text/")
	return strings.TrimPrefix(name, "application/")
}

func languageForName(name string) *sitter.Language {
	if f, ok := byName[languageName(name)]; ok {
		return f()
	}
	return nil
}

// KnownLanguage reports whether scripts in language can be checked.
func KnownLanguage(language string) bool {
	_, ok := byName[languageName(language)]
	return ok
}

// Validate returns the first syntax error in content, picking the grammar
// from the extension of filePath. Files without a grammar pass.
func Validate(content []byte, filePath string) error {
	return validate(content, filePath, languageForPath(filePath))
}

// ValidateScript is Validate for an inline script body in the named
// language.
func ValidateScript(body []byte, language string) error {
	return validate(body, language, languageForName(language))
}

// ASTErrors returns every syntax error in content, nil when there are none
// or no grammar applies.
func ASTErrors(content []byte, filePath string) []ValidationError {
	return astErrors(content, filePath, languageForPath(filePath), 0)
}

// ScriptErrors is ASTErrors for an inline script body.
func ScriptErrors(body []byte, language string) []ValidationError {
	return astErrors(body, language, languageForName(language), 0)
}

func validate(content []byte, name string, lang *sitter.Language) error {
	if lang == nil {
		return nil
	}
	root, err := parse(content, lang)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if !root.HasError() {
		return nil
	}
	if errs := syntaxErrors(root, name, 1); len(errs) > 0 {
		return &errs[0]
	}
	return &ValidationError{FilePath: name, Message: "syntax error"}
}

func astErrors(content []byte, name string, lang *sitter.Language, limit int) []ValidationError {
	if lang == nil {
		return nil
	}
	root, err := parse(content, lang)
	if err != nil || !root.HasError() {
		return nil
	}
	return syntaxErrors(root, name, limit)
}

func parse(content []byte, lang *sitter.Language) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("empty syntax tree")
	}
	return root, nil
}

// syntaxErrors lists ERROR and MISSING nodes in document order, stopping
// after limit of them when limit is positive. Error subtrees are not
// entered.
func syntaxErrors(root *sitter.Node, name string, limit int) []ValidationError {
	var errs []ValidationError
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			msg := "syntax error"
			if n.IsMissing() {
				msg += ": missing " + n.Type()
			}
			p := n.StartPoint()
			errs = append(errs, ValidationError{FilePath: name, Line: p.Row, Column: p.Column, Message: msg})
			return limit <= 0 || len(errs) < limit
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if (c.HasError() || c.IsMissing()) && !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	return errs
}
