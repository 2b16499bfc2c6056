package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/odyssey-erp/recon-portal/internal/auth"
)

// Test seams for terminal access.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

type options struct {
	email         string
	passwordStdin bool
}

// resolveCredential picks the seed credential from flags, then the
// environment, then an interactive prompt. The password is never taken from
// a flag so it stays out of the process list.
func resolveCredential(opts options, getenv func(string) string, stdin io.Reader, prompt io.Writer) (auth.SeedCredential, error) {
	cred := auth.SeedCredential{Email: opts.email}
	if cred.Email == "" {
		cred.Email = getenv("BOOTSTRAP_EMAIL")
	}

	reader := bufio.NewReader(stdin)
	if cred.Email == "" {
		if !isTerminal(int(os.Stdin.Fd())) {
			return cred, errors.New("email required: pass --email or set BOOTSTRAP_EMAIL")
		}
		fmt.Fprint(prompt, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return cred, fmt.Errorf("read email: %w", err)
		}
		cred.Email = strings.TrimSpace(line)
	}

	switch {
	case opts.passwordStdin:
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return cred, fmt.Errorf("read password: %w", err)
		}
		cred.Password = strings.TrimRight(line, "\r\n")
	case getenv("BOOTSTRAP_PASSWORD") != "":
		cred.Password = getenv("BOOTSTRAP_PASSWORD")
	default:
		if !isTerminal(int(os.Stdin.Fd())) {
			return cred, errors.New("password required: use --password-stdin or set BOOTSTRAP_PASSWORD")
		}
		fmt.Fprint(prompt, "Password: ")
		first, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return cred, fmt.Errorf("read password: %w", err)
		}
		fmt.Fprint(prompt, "Confirm password: ")
		second, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return cred, fmt.Errorf("read password: %w", err)
		}
		if string(first) != string(second) {
			return cred, errors.New("passwords do not match")
		}
		cred.Password = string(first)
	}
	return cred, nil
}
