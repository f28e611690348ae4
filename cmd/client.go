package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/pages"
)

const tokenEnv = "RENTCARE_TOKEN"

var errNoToken = errors.New("no session token: pass --token or set " + tokenEnv)

func apiClient(cmd *cobra.Command) (*client.Client, error) {
	base, _ := cmd.Flags().GetString("api")
	if base == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		base = cfg.APIBaseURL
	}
	return client.New(base, nil)
}

// authedClient is apiClient carrying the session token of an earlier login.
func authedClient(cmd *cobra.Command) (*client.Client, error) {
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return nil, errNoToken
	}
	api, err := apiClient(cmd)
	if err != nil {
		return nil, err
	}
	api.SetToken(token)
	return api, nil
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient(cmd)
			if err != nil {
				return err
			}
			resp, err := api.Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", resp.Message, resp.Timestamp)
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [email|username|flatNo]",
		Short: "Log in and print the session token and dashboard path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient(cmd)
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")

			page := pages.NewLoginPage(api)
			if state := page.Submit(cmd.Context(), args[0], password); state == pages.LoginError {
				return errors.New(page.Message)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, page.Message)
			fmt.Fprintf(out, "redirect: %s\n", page.Redirect)
			fmt.Fprintf(out, "token:    %s\n", page.Result.Token)
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := api.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show who the session token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			s, err := api.Session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s.User != nil {
				fmt.Fprintf(out, "owner %s (%s)\n", s.User.ID, displayName(s.User.Name, s.User.Email, s.User.Username))
			} else {
				fmt.Fprintf(out, "tenant of flat %s in property %s\n", s.FlatNo, s.PropertyID)
			}
			if s.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", s.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}

func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "unnamed"
}
