package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// credentialFlags are shared by login and register
type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "password (read from stdin when omitted)")
}

// resolve prompts on stdin for whatever was not passed as a flag
func (f *credentialFlags) resolve(cmd *cobra.Command) error {
	in := bufio.NewReader(cmd.InOrStdin())
	var err error
	if f.email == "" {
		if f.email, err = prompt(cmd, in, "Email: "); err != nil {
			return err
		}
	}
	if f.password == "" {
		if f.password, err = prompt(cmd, in, "Password: "); err != nil {
			return err
		}
	}
	if f.email == "" || f.password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd(a *app) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd); err != nil {
				return err
			}
			s, err := a.session.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.User.Email)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		creds    credentialFlags
		username string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd); err != nil {
				return err
			}
			s, err := a.session.Register(cmd.Context(), creds.email, creds.password, username)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", s.User.Email)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&username, "username", "", "optional display name")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and its cached library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s, err := a.session.Current(); err == nil {
				if err := a.cache.Delete(cmd.Context(), s.UserID()); err != nil {
					a.logger.Warn("failed to drop cached library", "user_id", s.UserID(), "error", err)
				}
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session.Current()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", s.User.Email, s.UserID())
			if s.User.Username != nil {
				fmt.Fprintf(out, "username: %s\n", *s.User.Username)
			}
			if s.Offline {
				fmt.Fprintln(out, "offline: API unreachable, using stored session")
			}
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var (
		username    string
		image       string
		removeImage bool
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the username or profile image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if username == "" && image == "" && !removeImage {
				return errors.New("nothing to update: pass --username, --image or --remove-image")
			}

			out := cmd.OutOrStdout()
			if username != "" {
				if _, err := a.client.UpdateProfile(ctx, username); err != nil {
					return err
				}
				fmt.Fprintf(out, "Username set to %s\n", username)
			}
			switch {
			case removeImage:
				if _, err := a.client.DeleteProfileImage(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Profile image removed")
			case image != "":
				u, err := a.client.UploadProfileImage(ctx, image)
				if err != nil {
					return err
				}
				if u.ProfileImageURL != nil {
					fmt.Fprintf(out, "Profile image: %s\n", *u.ProfileImageURL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&image, "image", "", "path to a new profile image")
	cmd.Flags().BoolVar(&removeImage, "remove-image", false, "remove the profile image")
	cmd.MarkFlagsMutuallyExclusive("image", "remove-image")
	return cmd
}
