// Command bptree is an interactive interface for the B+ tree: it seeds a
// tree from flags, then runs commands from a file or a shell-like prompt.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bptree"
	"bptree/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns an exit code.
// This is separated from main() to facilitate testing.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bptree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	order := fs.Int("order", bptree.DefaultOrder, "order of the B+ tree")
	file := fs.String("file", "", "run commands from `path` instead of the interactive prompt")
	sequential := fs.String("sequential", "", "initial `keys`, inserted one by one (comma separated)")
	bulk := fs.String("bulk-load", "", "initial `keys`, loaded via bulk construction (comma separated)")
	verbose := fs.Bool("verbose", false, "log structural events")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *sequential != "" && *bulk != "" {
		fmt.Fprintln(stderr, "-sequential and -bulk-load are mutually exclusive")
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	sess := &session{out: stdout}
	tree, err := buildTree(*order, *sequential, *bulk, sess,
		bptree.WithLogger(logger.NewLogrus(log)))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	sess.tree = tree

	if *sequential != "" || *bulk != "" {
		sess.display()
	}

	if *file != "" {
		return sess.runFile(*file, stderr)
	}
	return sess.repl(stdin)
}

// buildTree seeds the tree from one of the two mutually exclusive key
// sources. Duplicates in -sequential are reported and skipped, matching the
// interactive insert behavior; BulkBuild rejects them outright.
func buildTree(order int, sequential, bulk string, sess *session, opts ...bptree.Option) (*bptree.Tree[int64, int64], error) {
	if bulk != "" {
		keys, err := parseKeys(bulk)
		if err != nil {
			return nil, err
		}
		items := make([]bptree.Item[int64, int64], len(keys))
		for i, k := range keys {
			items[i] = bptree.Item[int64, int64]{Key: k, Value: k}
		}
		return bptree.BulkBuild(items, order, opts...)
	}

	tree, err := bptree.New[int64, int64](order, opts...)
	if err != nil {
		return nil, err
	}

	if sequential != "" {
		keys, err := parseKeys(sequential)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if err := tree.Insert(k, k); err != nil {
				fmt.Fprintf(sess.out, "Data already exists: %d\n", k)
			}
		}
	}

	return tree, nil
}

func parseKeys(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	keys := make([]int64, 0, len(fields))
	for _, f := range fields {
		k, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: keys must be integers", f)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
