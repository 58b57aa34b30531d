package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"bptree"
)

var (
	branchStyle = color.New(color.FgCyan)
	leafStyle   = color.New(color.FgGreen)
)

type session struct {
	tree *bptree.Tree[int64, int64]
	out  io.Writer
}

// repl runs a shell-like interactive loop until q or EOF.
func (s *session) repl(in io.Reader) int {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "Insert:  i <integer>")
	fmt.Fprintln(s.out, "Delete:  d <integer>")
	fmt.Fprintln(s.out, "Find:    f <integer>")
	fmt.Fprintln(s.out, "Display: D")
	fmt.Fprintln(s.out, "Quit:    q")

	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, ">>> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			quit, err := s.runCommand(line)
			if err != nil {
				fmt.Fprintln(s.out, "Invalid command format, please try again.")
			}
			if quit {
				return 0
			}
		}
		fmt.Fprint(s.out, ">>> ")
	}
	return 0
}

// runFile executes a command file line by line, echoing each command.
// An invalid line aborts with its line number.
func (s *session) runFile(path string, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "File %s not found.\n", path)
		return 1
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintf(s.out, ">>> %s\n", line)
		quit, err := s.runCommand(line)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid command format at line %d: %s\n", i+1, line)
			return 1
		}
		if quit {
			return 0
		}
	}
	return 0
}

var errBadCommand = errors.New("invalid command")

// runCommand parses and executes one command line. Mutations print the tree
// afterward; precondition failures print a message and leave it untouched.
func (s *session) runCommand(line string) (quit bool, err error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "D":
		if len(fields) != 1 {
			return false, errBadCommand
		}
		s.display()

	case "q":
		if len(fields) != 1 {
			return false, errBadCommand
		}
		return true, nil

	case "i":
		key, err := commandKey(fields)
		if err != nil {
			return false, err
		}
		switch err := s.tree.Insert(key, key); {
		case errors.Is(err, bptree.ErrDuplicateKey):
			fmt.Fprintf(s.out, "Data already exists: %d\n", key)
		case err != nil:
			fmt.Fprintln(s.out, err)
		default:
			s.display()
		}

	case "d":
		key, err := commandKey(fields)
		if err != nil {
			return false, err
		}
		switch err := s.tree.Delete(key); {
		case errors.Is(err, bptree.ErrKeyNotFound):
			fmt.Fprintf(s.out, "Data not found: %d\n", key)
		case err != nil:
			fmt.Fprintln(s.out, err)
		default:
			s.display()
		}

	case "f":
		key, err := commandKey(fields)
		if err != nil {
			return false, err
		}
		if s.tree.Contains(key) {
			fmt.Fprintf(s.out, "Key found: %d\n", key)
		} else {
			fmt.Fprintf(s.out, "Key not found: %d\n", key)
		}

	default:
		return false, errBadCommand
	}

	return false, nil
}

func commandKey(fields []string) (int64, error) {
	if len(fields) != 2 {
		return 0, errBadCommand
	}
	key, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, errBadCommand
	}
	return key, nil
}

// display renders the level-ordered dump with internal nodes and leaves in
// distinct colors.
func (s *session) display() {
	for _, line := range strings.Split(strings.TrimSuffix(s.tree.Describe(), "\n"), "\n") {
		for i, tok := range strings.Fields(line) {
			if i > 0 {
				fmt.Fprint(s.out, " ")
			}
			if strings.HasPrefix(tok, "(") {
				fmt.Fprint(s.out, branchStyle.Sprint(tok))
			} else {
				fmt.Fprint(s.out, leafStyle.Sprint(tok))
			}
		}
		fmt.Fprintln(s.out)
	}
}
