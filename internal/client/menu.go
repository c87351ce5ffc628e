package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/eikendev/authme/internal/logging"
	"github.com/eikendev/authme/internal/protocol"
)

// styles mirror the teacher's convention of naming one lipgloss.Style
// per semantic role rather than composing ad hoc at each call site.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// sessionOps is the subset of *Client a Menu drives; isolating it lets
// tests exercise the menu's prompt/dispatch logic against a fake.
type sessionOps interface {
	WriteSecret(secret string) (bool, error)
	ReadSecret() (string, bool, error)
	Logout() (bool, error)
}

// Menu drives the post-login instruction loop of spec.md §4.6: write a
// secret, read a secret, or log out. It renders plain, unstyled text
// when stdout is not a terminal (piped output, redirected into a
// file), matching how the teacher's transfer package only engages
// terminal-specific behavior after checking term.IsTerminal.
type Menu struct {
	client sessionOps
	out    io.Writer
	in     *bufio.Scanner
	styled bool
}

// NewMenu builds a menu around an already-logged-in client. outFd is
// the file descriptor out is backed by, used only to decide whether to
// apply lipgloss styling.
func NewMenu(client sessionOps, in io.Reader, out io.Writer, outFd uintptr) *Menu {
	return &Menu{
		client: client,
		out:    out,
		in:     bufio.NewScanner(in),
		styled: term.IsTerminal(int(outFd)),
	}
}

func (m *Menu) render(style lipgloss.Style, s string) string {
	if !m.styled {
		return s
	}
	return style.Render(s)
}

// Run prints the instruction menu and dispatches choices until the
// user logs out or input is exhausted.
func (m *Menu) Run() error {
	fmt.Fprintln(m.out, m.render(titleStyle, "authme"))
	for {
		fmt.Fprintln(m.out, "Commands:")
		fmt.Fprintln(m.out, "  1) write secret")
		fmt.Fprintln(m.out, "  2) read secret")
		fmt.Fprintln(m.out, "  3) logout")
		fmt.Fprint(m.out, m.render(promptStyle, "Please select a command (1-3): "))

		if !m.in.Scan() {
			return m.in.Err()
		}

		choice, err := strconv.Atoi(strings.TrimSpace(m.in.Text()))
		if err != nil {
			fmt.Fprintln(m.out, m.render(errorStyle, "enter 1, 2, or 3"))
			continue
		}

		done, err := m.dispatch(choice)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (m *Menu) dispatch(choice int) (done bool, err error) {
	switch choice {
	case 1:
		fmt.Fprint(m.out, m.render(promptStyle, "New secret: "))
		if !m.in.Scan() {
			return true, m.in.Err()
		}
		newSecret := m.in.Text()
		if len(newSecret) > protocol.MaxSecretLen {
			fmt.Fprintln(m.out, m.render(errorStyle, "Your secret is too long."))
			return false, nil
		}
		ok, err := m.client.WriteSecret(newSecret)
		if err != nil {
			return true, err
		}
		logging.Debug("menu: write secret ok=%v", ok)
		if !ok {
			fmt.Fprintln(m.out, m.render(errorStyle, "Could not write your new secret."))
		}
		return false, nil

	case 2:
		secret, ok, err := m.client.ReadSecret()
		if err != nil {
			return true, err
		}
		logging.Debug("menu: read secret ok=%v", ok)
		if ok {
			fmt.Fprintln(m.out, m.render(successStyle, fmt.Sprintf("Your secret: %s", secret)))
		} else {
			fmt.Fprintln(m.out, m.render(errorStyle, "Could not read the secret."))
		}
		return false, nil

	case 3:
		ok, err := m.client.Logout()
		if err != nil {
			return true, err
		}
		logging.Debug("menu: logout ok=%v", ok)
		if !ok {
			fmt.Fprintln(m.out, m.render(errorStyle, "Could not logout correctly."))
		}
		return true, nil

	default:
		fmt.Fprintln(m.out, m.render(errorStyle, "enter 1, 2, or 3"))
		return false, nil
	}
}
