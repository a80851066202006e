// hashpw prints the bcrypt hash of a password read from the terminal, or
// checks a password against an existing hash.
//
//	hashpw [--cost N]
//	hashpw --check '$2a$10$...'
//
// When stdin is not a terminal the first line of input is used, so the tool
// can be scripted: printf 's3cret\n' | hashpw.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var errMismatch = errors.New("password does not match hash")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cost int
	var check string

	flagSet := pflag.NewFlagSet("hashpw", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flagSet.StringVar(&check, "check", "", "verify the password against this hash instead of hashing it")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("empty password")
	}

	if check != "" {
		err := bcrypt.CompareHashAndPassword([]byte(check), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errMismatch
		}
		if err != nil {
			return fmt.Errorf("check hash: %w", err)
		}
		_, err = fmt.Fprintln(stdout, "ok")
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(hash))
	return err
}

func readPassword(stdin io.Reader, prompt io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
