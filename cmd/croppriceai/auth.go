package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hyperengineering/croppriceai/internal/session"
)

var (
	loginUsername    string
	loginPassword    string
	registerUsername string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in (prompts for missing credentials)",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runWhoami),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runRegister),
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "Username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Username")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
}

// prompter reads answers from the command's input. Secrets are read without
// echo when the input is a terminal.
type prompter struct {
	in   *bufio.Reader
	file *os.File
	out  io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) secret(label string) (string, error) {
	if p.file == nil {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(p.file.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func runLogin(cmd *cobra.Command, _ []string, a *app) error {
	p := newPrompter(cmd)
	username, password := loginUsername, loginPassword
	var err error
	if username == "" {
		if username, err = p.line("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = p.secret("Password: "); err != nil {
			return err
		}
	}

	if err := a.sess.Login(cmd.Context(), username, password); err != nil {
		return a.report(cmd, err, "Login failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Menu(a.shell.Greeting(), a.shell.Items()))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string, a *app) error {
	if err := a.shell.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string, a *app) error {
	fmt.Fprintln(cmd.OutOrStdout(), a.shell.Greeting())
	return nil
}

func runRegister(cmd *cobra.Command, _ []string, a *app) error {
	p := newPrompter(cmd)
	password := registerPassword
	if password == "" {
		var err error
		if password, err = p.secret("Password: "); err != nil {
			return err
		}
	}
	if err := session.Register(registerUsername, registerEmail, password); err != nil {
		return a.report(cmd, err, "Registration failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please log in: croppriceai login")
	return nil
}
