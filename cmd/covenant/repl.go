package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".covenant_history"
	promptMain  = "covenant> "
	promptCont  = "......... "
)

func cmdRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts options
	opts.register(fs)
	name := fs.String("name", "repl", "name of the session contract")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, st, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if paths := fs.Args(); len(paths) > 0 {
		srcs, err := loadSources(paths)
		if err != nil {
			return err
		}
		for _, src := range srcs {
			if _, err := eng.DeployProgram(ctx, opts.sender, src.Name, src.Prog); err != nil {
				return fmt.Errorf("%s: %w", src.Path, err)
			}
		}
	}

	session, err := eng.NewSession(*name, opts.sender)
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Printf("covenant %s, contract %q, sender %q. Type :quit to exit.\n", version, *name, opts.sender)
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(src)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return nil
		case strings.HasPrefix(trimmed, ":"):
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		vals, err := session.Eval(ctx, src)
		if err != nil {
			fail(err)
			continue
		}
		for _, v := range vals {
			fmt.Println(v)
		}
	}
}

// readInput prompts until the parentheses of the input balance.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if depth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// depth returns the number of unclosed parentheses in src, ignoring string
// literals and comments.
func depth(src string) int {
	n := 0
	inString, escaped, inComment := false, false, false
	for _, r := range src {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
		case r == '"':
			inString = true
		case r == ';':
			inComment = true
		case r == '(':
			n++
		case r == ')':
			n--
		}
	}
	return n
}
