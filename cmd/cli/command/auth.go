package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, sign in and out. Tokens are kept in the OS keyring or ~/.novelhub/session.yaml.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a NovelHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		confirm, err := cli.session.Register(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if confirm {
			fmt.Fprintln(cmd.OutOrStdout(), "Check your e-mail to confirm the account, then run 'novelhub auth login'.")
			return nil
		}
		if cli.session.State().NeedsProfileCompletion {
			fmt.Fprintln(cmd.OutOrStdout(), "Finish your profile with 'novelhub profile complete --username <name>'.")
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if err := cli.session.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		if cli.session.State().NeedsProfileCompletion {
			fmt.Fprintln(cmd.OutOrStdout(), "Finish your profile with 'novelhub profile complete --username <name>'.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.session.Logout(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := cli.session.State()
		out := cmd.OutOrStdout()
		if !st.LoggedIn() {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", dim("User ID:"), st.User.ID)
		fmt.Fprintf(out, "%s %s\n", dim("Email:"), st.User.Email)
		if st.Profile != nil {
			fmt.Fprintf(out, "%s %s\n", dim("Username:"), st.Profile.Username)
		}
		if st.NeedsProfileCompletion {
			fmt.Fprintln(out, accent("Profile incomplete"))
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringP("email", "e", "", "account e-mail")
		c.Flags().StringP("password", "p", "", "account password")
		c.MarkFlagRequired("email")
		c.MarkFlagRequired("password")
	}
}
