package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/guilherme-santos/linearcalendar/file"
)

var ConfigureCommand = _configureCommand{
	Name:        "configure",
	Description: "Give access to your Google calendars",
}

type _configureCommand struct {
	Name        string
	Description string
}

func (s _configureCommand) Run(ctx context.Context, cfg *file.Config, args []string) error {
	fs := newFlagSet(s.Name)
	fs.StringVar(&cfg.Google.TokenFile, "token-file", cfg.Google.TokenFile, "where to store the access token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	googleCal, err := newGoogleClient(cfg)
	if err != nil {
		return fmt.Errorf("creating client: %v", err)
	}
	w := flag.CommandLine.Output()
	googleCal.Output = w

	authToken, err := googleCal.Login(ctx)
	if err != nil {
		return fmt.Errorf("google: logging in: %v", err)
	}
	if err := googleCal.Connect(ctx, authToken); err != nil {
		return fmt.Errorf("google: %v", err)
	}
	profile, err := googleCal.Profile(ctx)
	if err != nil {
		return fmt.Errorf("google: getting profile: %v", err)
	}

	fmt.Fprintf(w, "Saving token for %q in %s...\n", profile.Email, cfg.Google.TokenFile)
	if err := file.WriteToken(cfg.Google.TokenFile, authToken); err != nil {
		return fmt.Errorf("saving token: %v", err)
	}
	return nil
}
