package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	registerCmd.Flags().String("name", "", "Full name for the new account")
	loginCmd.Flags().String("id-token", "", "Federated identity token (skips email/password)")
}

var loginCmd = &cobra.Command{
	Use:   "login [email] [password]",
	Short: "Sign in and store the session",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if idToken, _ := cmd.Flags().GetString("id-token"); idToken != "" {
			sess, err := a.sessions.SignInWithProvider(ctx, idToken)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", sess.Email)
			return nil
		}

		if len(args) != 2 {
			return fmt.Errorf("usage: careerflow login <email> <password>")
		}
		sess, err := a.sessions.SignIn(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", sess.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		name, _ := cmd.Flags().GetString("name")
		sess, err := a.sessions.Register(ctx, args[0], args[1], name)
		if err != nil {
			return err
		}
		fmt.Printf("Account created for %s. A verification email is on its way.\n", sess.Email)
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Send a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		if err := a.sessions.RequestPasswordReset(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Password reset email sent to %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.sessions.SignOut()
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sess := a.sessions.Current()
		if sess == nil {
			fmt.Println("Not signed in.")
			return nil
		}
		if sess.DisplayName != "" {
			fmt.Printf("%s <%s>\n", sess.DisplayName, sess.Email)
		} else {
			fmt.Println(sess.Email)
		}
		return nil
	},
}
