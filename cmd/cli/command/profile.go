package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"novelhub/internal/models"
	"novelhub/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your profile",
}

var showProfileCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		p, err := cli.services.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !p.IsComplete() {
			fmt.Fprintln(out, accent("Your profile is incomplete; run `novelhub profile complete`."))
			return nil
		}
		fmt.Fprintln(out, heading(p.Username))
		fmt.Fprintf(out, "%s %s\n", dim("Email:"), p.Email)
		if p.Age != nil {
			fmt.Fprintf(out, "%s %d\n", dim("Age:"), *p.Age)
		}
		if len(p.InterestGenre) > 0 {
			fmt.Fprintf(out, "%s %s\n", dim("Favourite genres:"), strings.Join(p.InterestGenre, ", "))
		}
		if p.ProfilePicture != nil {
			fmt.Fprintf(out, "%s %s\n", dim("Picture:"), *p.ProfilePicture)
		}
		if p.Bio != nil && *p.Bio != "" {
			fmt.Fprintf(out, "\n%s\n", *p.Bio)
		}
		return nil
	},
}

// profileInput applies the changed flags on top of p, which may be nil.
func profileInput(cmd *cobra.Command, p *models.UserProfile) service.ProfileInput {
	var in service.ProfileInput
	if p != nil {
		in = service.ProfileInput{
			Username:       p.Username,
			Age:            p.Age,
			InterestGenres: p.InterestGenre,
			Bio:            p.Bio,
			ProfilePicture: p.ProfilePicture,
		}
	}
	flags := cmd.Flags()
	if flags.Changed("username") {
		in.Username, _ = flags.GetString("username")
	}
	if flags.Changed("age") {
		age, _ := flags.GetInt("age")
		in.Age = &age
	}
	if flags.Changed("genre") {
		in.InterestGenres, _ = flags.GetStringSlice("genre")
	}
	if flags.Changed("bio") {
		bio, _ := flags.GetString("bio")
		in.Bio = &bio
	}
	return in
}

func pictureFromFlags(cmd *cobra.Command) (*service.Upload, func(), error) {
	path, _ := cmd.Flags().GetString("picture")
	if path == "" {
		return nil, func() {}, nil
	}
	up, f, err := openUpload(path)
	if err != nil {
		return nil, nil, err
	}
	return up, func() { f.Close() }, nil
}

var completeProfileCmd = &cobra.Command{
	Use:   "complete",
	Short: "Fill in your profile after registering",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := cli.user(cmd.Context()); err != nil {
			return err
		}
		picture, done, err := pictureFromFlags(cmd)
		if err != nil {
			return err
		}
		defer done()
		_, err = cli.session.CompleteProfile(cmd.Context(), profileInput(cmd, nil), picture)
		return err
	},
}

var updateProfileCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		current, err := cli.services.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		picture, done, err := pictureFromFlags(cmd)
		if err != nil {
			return err
		}
		defer done()
		_, err = cli.services.Profiles.Update(ctx, userID, profileInput(cmd, current), picture)
		return err
	},
}

func init() {
	profileCmd.AddCommand(showProfileCmd, completeProfileCmd, updateProfileCmd)

	for _, c := range []*cobra.Command{completeProfileCmd, updateProfileCmd} {
		c.Flags().String("username", "", "display name")
		c.Flags().Int("age", 0, "age")
		c.Flags().StringSlice("genre", nil, "up to 3 favourite genres")
		c.Flags().String("bio", "", "short bio")
		c.Flags().String("picture", "", "profile picture file (jpeg, png or webp)")
	}
	completeProfileCmd.MarkFlagRequired("username")
}
