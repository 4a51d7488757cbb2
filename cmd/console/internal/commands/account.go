package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/infrastructure/navigation"
)

const reloginHint = "log in again with: storefront login <username>"

// terminalNavigator drops redirects. A one-shot command exits before the
// delayed redirect fires, so commands report an expired session themselves.
func terminalNavigator() navigation.Func {
	return func(string) {}
}

// readPassword takes the first line of stdin when no password flag is set.
func readPassword(in io.Reader, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type LoginCmd struct {
	Username string `arg:"" help:"Account username"`
	Password string `help:"Password; read from stdin when empty" env:"STOREFRONT_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	password, err := readPassword(os.Stdin, l.Password)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, globals, terminalNavigator())
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.session.Login(ctx, l.Username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(globals.out(), "Logged in as %s (%s)\n", user.Username, strings.Join(user.Roles, ", "))
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(ctx, globals, terminalNavigator())
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.session.Logout(ctx)
	fmt.Fprintln(globals.out(), "Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	rt, err := newRuntime(ctx, globals, terminalNavigator())
	if err != nil {
		return err
	}
	defer rt.Close()

	s := rt.session.Start(ctx)
	if !s.IsAuthenticated {
		fmt.Fprintln(globals.out(), "Not logged in.")
		fmt.Fprintln(globals.out())
		fmt.Fprintln(globals.out(), "To log in:")
		fmt.Fprintln(globals.out(), "  storefront login <username>")
		return nil
	}

	tw := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", s.CurrentUser.ID)
	fmt.Fprintf(tw, "USERNAME\t%s\n", s.CurrentUser.Username)
	fmt.Fprintf(tw, "EMAIL\t%s\n", s.CurrentUser.Email)
	fmt.Fprintf(tw, "ROLES\t%s\n", strings.Join(s.CurrentUser.Roles, ", "))
	fmt.Fprintf(tw, "API\t%s\n", rt.client.BaseURL())
	return tw.Flush()
}

type RegisterCmd struct {
	Username string `arg:"" help:"Account username"`
	Email    string `arg:"" help:"Account email"`
	Password string `help:"Password; read from stdin when empty" env:"STOREFRONT_PASSWORD"`
	Role     string `help:"Role for the new account: admin, seller or user."`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	password, err := readPassword(os.Stdin, r.Password)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, globals, terminalNavigator())
	if err != nil {
		return err
	}
	defer rt.Close()

	user, err := rt.session.Register(ctx, domain.Registration{
		Username: r.Username,
		Email:    r.Email,
		Password: password,
		Role:     r.Role,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			for _, msg := range strings.Split(ve.Error(), "; ") {
				fmt.Fprintf(os.Stderr, "  - %s\n", msg)
			}
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(globals.out(), "Registered %s. Log in with: storefront login %s\n", user.Username, user.Username)
	return nil
}
