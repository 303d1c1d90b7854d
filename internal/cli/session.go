package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
	verifyCode    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in to the backend and store the session credential locally.

When the account has multi-factor authentication enabled, the backend
answers with a challenge instead of a credential; run "coproctl verify"
with the emailed code to finish signing in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		username := loginUsername
		if username == "" {
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}

		password := loginPassword
		if password == "" {
			password, err = promptLine("Password: ")
			if err != nil {
				return err
			}
		}

		result, err := app.auth.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		if result.MFARequired {
			fmt.Printf("A verification code was sent to %s.\n", result.MaskedEmail)
			fmt.Printf("Run %s to finish signing in.\n", color.CyanString("coproctl verify -u %s", username))
			return nil
		}

		fmt.Println(color.GreenString("Signed in."))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Submit the MFA verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		username := loginUsername
		if username == "" {
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}

		code := verifyCode
		if code == "" {
			code, err = promptLine("Verification code: ")
			if err != nil {
				return err
			}
		}

		if err := app.auth.VerifyMFA(cmd.Context(), username, code); err != nil {
			return err
		}

		fmt.Println(color.GreenString("Signed in."))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		app.auth.Logout(cmd.Context(), true)
		fmt.Println("Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		cred, ok := app.session.Credential()
		if !ok {
			fmt.Println(color.YellowString("Not signed in."))
			return nil
		}

		fmt.Println(color.GreenString("Signed in."))
		fmt.Printf("Session expires at %s (%s from now).\n",
			cred.ExpiresAt.Local().Format(time.RFC1123),
			time.Until(cred.ExpiresAt).Round(time.Minute))
		return nil
	},
}

// promptLine reads one line from stdin after printing a prompt.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")

	verifyCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	verifyCmd.Flags().StringVar(&verifyCode, "code", "", "6-digit verification code (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}
