package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	errAborted = errors.New("aborted by user")
	stdin      = os.Stdin
)

// confirmOverwrite asks before replacing an existing output file. Without a
// terminal to ask on, it refuses.
func confirmOverwrite(in *os.File, out io.Writer, path string) error {
	if !term.IsTerminal(int(in.Fd())) {
		return errors.Errorf("output file %s already exists, use --force to overwrite it", path)
	}

	ok, err := askOverwrite(in, out)
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}

func askOverwrite(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "Output file already exists. Overwrite? (y/n): ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "reading answer")
	}
	fmt.Fprintln(out)

	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}
