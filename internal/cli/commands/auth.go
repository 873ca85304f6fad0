package commands

import (
	"context"
	"fmt"
	"strings"

	"DressCode/internal/cli/bootstrap"
	"DressCode/internal/config"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create a local account and log in" }
func (registerCmd) Usage() string       { return "register <login> <password> [nickname]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	nickname := ""
	if len(args) == 3 {
		nickname = args[2]
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()
	auth, p, err := bootstrap.OpenAuth(cfg, log)
	if err != nil {
		return err
	}
	if err := auth.Register(ctx, args[0], args[1], nickname); err != nil {
		return err
	}
	// сразу открываем сессию: создаётся БД пользователя и каталог образов
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()
	fmt.Fprintf(Out, "Registered %s (%s)\n", s.Login, p.User(s.Login).Nickname())
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Log in to a local account" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()
	auth, _, err := bootstrap.OpenAuth(cfg, log)
	if err != nil {
		return err
	}
	if err := auth.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Log out" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	auth, _, err := bootstrap.OpenAuth(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	if err := auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the current user" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	auth, p, err := bootstrap.OpenAuth(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	login, err := auth.CurrentUser()
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s (%s)\n", login, p.User(login).Nickname())
	return nil
}

type usersCmd struct{}

func (usersCmd) Name() string        { return "users" }
func (usersCmd) Description() string { return "List local accounts" }
func (usersCmd) Usage() string       { return "users" }

func (usersCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	auth, _, err := bootstrap.OpenAuth(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	current, _ := auth.CurrentUser()
	users := auth.ListUsers()
	if len(users) == 0 {
		fmt.Fprintln(Out, "Нет аккаунтов")
		return nil
	}
	for _, u := range users {
		mark := " "
		if strings.EqualFold(u, current) {
			mark = "*"
		}
		fmt.Fprintf(Out, "%s %s\n", mark, u)
	}
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
	RegisterCmd(usersCmd{})
}
