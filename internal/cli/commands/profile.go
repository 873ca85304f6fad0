package commands

import (
	"context"
	"flag"
	"fmt"

	"DressCode/internal/config"
)

type profileCmd struct{}

func (profileCmd) Name() string        { return "profile" }
func (profileCmd) Description() string { return "Показать профиль" }
func (profileCmd) Usage() string       { return "profile" }

func (profileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	p := s.Profile.Get()
	gender := p.Gender
	if gender == "" {
		gender = "не задан"
	}
	fmt.Fprintf(Out, "login:    %s\n", p.Login)
	fmt.Fprintf(Out, "nickname: %s\n", p.Nickname)
	fmt.Fprintf(Out, "gender:   %s\n", gender)
	if p.Avatar != "" {
		fmt.Fprintf(Out, "avatar:   %s\n", p.Avatar)
	}
	if p.City != "" {
		fmt.Fprintf(Out, "city:     %s\n", p.City)
	}
	return nil
}

type profileSetCmd struct{}

func (profileSetCmd) Name() string { return "profile-set" }
func (profileSetCmd) Description() string {
	return "Изменить ник, пол (MALE|FEMALE|unset) или аватар"
}
func (profileSetCmd) Usage() string {
	return "profile-set [--nick <nickname>] [--gender <MALE|FEMALE|unset>] [--avatar <photo>]"
}

func (profileSetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("profile-set")
	nick := fs.String("nick", "", "ник")
	gender := fs.String("gender", "", "пол")
	avatar := fs.String("avatar", "", "фото аватара")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || fs.NFlag() == 0 {
		return ErrUsage
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if set["nick"] {
		if err := s.Profile.SetNickname(*nick); err != nil {
			return err
		}
	}
	if set["gender"] {
		if err := s.Profile.SetGender(*gender); err != nil {
			return err
		}
	}
	if set["avatar"] {
		if err := s.Profile.SetAvatar(*avatar); err != nil {
			return err
		}
	}
	fmt.Fprintln(Out, "Profile updated")
	return nil
}

func init() {
	RegisterCmd(profileCmd{})
	RegisterCmd(profileSetCmd{})
}
