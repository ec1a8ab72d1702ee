package cmd

import (
	"errors"
	"os"

	"github.com/eonplay/eonplay/icon"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(subtitlesCmd)
	subtitlesCmd.SetOut(os.Stdout)
}

var subtitlesCmd = &cobra.Command{
	Use:     "subtitles <file>",
	Short:   "List the subtitle files that would be picked up next to a media file",
	Aliases: []string{"subs"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in, release := standaloneIntake()
		defer release()

		path := args[0]
		if !media.IsMediaPath(path) {
			handleErr(errors.New(in.ValidationErrorMessage(path, media.UnsupportedFormat)))
		}

		subs := in.AutoDetectSubtitles(path)
		if len(subs) == 0 {
			cmd.Println(style.Faint("No subtitles found"))
			return
		}

		cmd.Printf("%s %s\n", icon.Get(icon.Subtitle), style.Bold(util.Quantify(len(subs), "subtitle", "subtitles")))
		for _, s := range subs {
			cmd.Println("  " + s)
		}
	},
}
