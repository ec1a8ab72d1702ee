package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/icon"
	"github.com/eonplay/eonplay/intake"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.SetOut(os.Stdout)
}

var validateCmd = &cobra.Command{
	Use:   "validate <file|url>...",
	Short: "Check files and URLs against the intake rules without playing them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in, release := standaloneIntake()

		var failed int
		for _, origin := range args {
			if problem := validateOrigin(in, origin); problem != "" {
				failed++
				cmd.Printf("%s %s\n  %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), origin, style.Faint(problem))
				continue
			}
			cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), origin)
		}

		release()
		if failed > 0 {
			handleErr(fmt.Errorf("%s failed validation", util.Quantify(failed, "origin", "origins")))
		}
	},
}

// validateOrigin returns a description of what is wrong with origin, or "".
func validateOrigin(in *intake.Intake, origin string) string {
	if strings.Contains(origin, "://") {
		// file:// URLs are validated as files here too.
		if _, _, err := in.ValidateMediaURL(origin); err != nil {
			return err.Error()
		}
		return ""
	}

	if result := in.ValidateMediaFile(origin); result != media.Valid {
		return in.ValidationErrorMessage(origin, result)
	}
	return ""
}
