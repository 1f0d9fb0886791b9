package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	loginCmd.Flags().StringP("email", "e", "", "account email")
	loginCmd.Flags().StringP("password", "p", "", "password (default $CHAT_PASSWORD or prompt)")

	registerCmd.Flags().StringP("username", "u", "", "username")
	registerCmd.Flags().StringP("email", "e", "", "account email")
	registerCmd.Flags().StringP("password", "p", "", "password (default $CHAT_PASSWORD or prompt)")
}

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from stdin when value is empty
func prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("CHAT_PASSWORD")
	}
	return prompt(password, "Password")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		email, err := prompt(email, "Email")
		if err != nil {
			return err
		}
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}

		result := app.stores.Auth.Login(cmd.Context(), email, password)
		if !result.Success {
			return errors.New(result.Error)
		}

		okColor.Printf("Logged in as %s (%s)\n", result.User.Username, result.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.stores.Auth.Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		username, err := prompt(username, "Username")
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		email, err = prompt(email, "Email")
		if err != nil {
			return err
		}
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}

		result := app.stores.Auth.Register(cmd.Context(), username, email, password)
		if !result.Success {
			return errors.New(result.Error)
		}

		okColor.Printf("Account %s created. Run `chatcli login` to sign in.\n", result.User.Username)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		u := app.stores.Auth.State().User
		fmt.Printf("%s <%s>\n", u.Username, u.Email)
		dimColor.Printf("id %s, member since %s\n", u.ID, formatTime(u.CreatedAt))
		return nil
	},
}
