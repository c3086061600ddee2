package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"covenant/internal/ast"
	"covenant/internal/natives"
	"covenant/internal/parser"
)

// SourceExt is the file extension of contract sources.
const SourceExt = ".cov"

// Source is one parsed contract file.
type Source struct {
	Name string // contract name, the file name without extension
	Path string
	Prog *ast.Program
}

// ValidName reports whether name can name a contract.
func ValidName(name string) error {
	if name == "" {
		return fmt.Errorf("empty contract name")
	}
	if len(name) > natives.MaxPrincipalLength {
		return fmt.Errorf("contract name %q is longer than %d bytes", name, natives.MaxPrincipalLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("contract name %q contains %q", name, r)
		}
	}
	return nil
}

// ErrInvalidSender is returned for a sender that does not fit the type of
// tx-sender.
var ErrInvalidSender = errors.New("invalid sender")

// ValidSender reports whether sender can act as tx-sender, whose static
// type is a buffer of at most natives.MaxPrincipalLength bytes.
func ValidSender(sender string) error {
	if len(sender) > natives.MaxPrincipalLength {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrInvalidSender, len(sender), natives.MaxPrincipalLength)
	}
	return nil
}

// LoadFile reads and parses a single contract file.
func LoadFile(path string) (*Source, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := ValidName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", path, err)
	}
	prog, err := parser.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Source{Name: name, Path: path, Prog: prog}, nil
}

// LoadDir parses every contract file in dir and returns them in deployment
// order: each contract follows the contracts it references.
func LoadDir(dir string) ([]*Source, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("cannot read contract directory %s: %w", dir, err)}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != SourceExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	var srcs []*Source
	var errs []error
	for _, path := range files {
		src, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		srcs = append(srcs, src)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	ordered, err := DeployOrder(srcs)
	if err != nil {
		return nil, []error{err}
	}
	return ordered, nil
}

// References returns the contract names prog reaches through contract-call!
// and fetch-contract-entry, sorted and deduplicated.
func References(prog *ast.Program) []string {
	seen := make(map[string]bool)
	for _, e := range prog.Exprs {
		ast.Walk(e, func(n *ast.Expr) {
			head, args, ok := n.Head()
			if !ok || len(args) == 0 {
				return
			}
			if head != "contract-call!" && head != "fetch-contract-entry" {
				return
			}
			if name, ok := args[0].MatchAtom(); ok {
				seen[name] = true
			}
		})
	}
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

// DeployOrder sorts srcs so that every contract comes after the contracts
// it references. References to contracts outside srcs are ignored here and
// reported by the checker. Ties keep the input order.
func DeployOrder(srcs []*Source) ([]*Source, error) {
	byName := make(map[string]*Source, len(srcs))
	for _, src := range srcs {
		if _, dup := byName[src.Name]; dup {
			return nil, fmt.Errorf("duplicate contract %q", src.Name)
		}
		byName[src.Name] = src
	}

	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	ordered := make([]*Source, 0, len(srcs))

	var visit func(src *Source, path []string) error
	visit = func(src *Source, path []string) error {
		if visited[src.Name] {
			return nil
		}
		if visiting[src.Name] {
			return fmt.Errorf("contract reference cycle: %s", strings.Join(append(path, src.Name), " -> "))
		}
		visiting[src.Name] = true
		for _, ref := range References(src.Prog) {
			dep, ok := byName[ref]
			if !ok || ref == src.Name {
				continue
			}
			if err := visit(dep, append(path, src.Name)); err != nil {
				return err
			}
		}
		visiting[src.Name] = false
		visited[src.Name] = true
		ordered = append(ordered, src)
		return nil
	}

	for _, src := range srcs {
		if err := visit(src, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
