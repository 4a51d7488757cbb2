package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/99minutos/storefront-console/cmd/console/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Serve    commands.ServeCmd    `cmd:"" help:"Run the web console"`
		Login    commands.LoginCmd    `cmd:"" help:"Log in and store the credential"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Log out and forget the credential"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the logged in account"`
		Register commands.RegisterCmd `cmd:"" help:"Create an account"`
		Get      commands.GetCmd      `cmd:"" help:"GET a backend path with the stored credential"`
		Debug    bool                 `help:"Enable debug mode."`
		API      string               `help:"Backend API base URL (overrides API_BASE_URL)." name:"api"`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("storefront"),
		kong.Description("Storefront console and terminal client."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, API: cli.API, Version: version, Out: os.Stdout})
	cmd.FatalIfErrorf(err)
}
