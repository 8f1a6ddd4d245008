package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func authCommand() *cli.Command {
	var (
		cfg          config
		clientID     string
		clientSecret string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "client-id",
			Usage:       "OAuth client ID",
			Sources:     cli.EnvVars("GOOGLE_CLIENT_ID"),
			Destination: &clientID,
		},
		&cli.StringFlag{
			Name:        "client-secret",
			Usage:       "OAuth client secret",
			Sources:     cli.EnvVars("GOOGLE_CLIENT_SECRET"),
			Destination: &clientSecret,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize access to the Drive application data folder",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.newLogger()

			app, err := cfg.loadAppConfig()
			if err != nil {
				return err
			}
			if clientID != "" {
				app.ClientID = clientID
			}
			if clientSecret != "" {
				app.ClientSecret = clientSecret
			}

			oc, err := cfg.oauthConfig(app)
			if err != nil {
				return err
			}

			authURL := oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Fprintf(c.Root().Writer, "Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

			fmt.Fprint(c.Root().Writer, "Enter authorization code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := oc.Exchange(ctx, authCode)
			if err != nil {
				return goerr.Wrap(err, "unable to retrieve token from web")
			}

			tokenPath, err := cfg.tokenPath()
			if err != nil {
				return err
			}
			if err := saveToken(tokenPath, token); err != nil {
				return err
			}

			configPath, err := cfg.configPath()
			if err != nil {
				return err
			}
			if err := app.Save(configPath); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Authorized. Token saved to %s\n", tokenPath)
			return nil
		},
	}
}

// saveToken saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return goerr.Wrap(err, "unable to create token directory")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return goerr.Wrap(err, "unable to create token file", goerr.V("path", path))
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return goerr.Wrap(err, "unable to encode token")
	}
	return nil
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, goerr.Wrap(err, "unable to decode token file", goerr.V("path", path))
	}
	return tok, nil
}
