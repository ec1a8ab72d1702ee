package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eonplay/eonplay/core"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/registry"
	"github.com/eonplay/eonplay/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntP("volume", "V", 0, "Initial volume in percent")
	lo.Must0(viper.BindPFlag(key.PlaybackVolume, playCmd.Flags().Lookup("volume")))

	playCmd.Flags().Bool("no-resume", false, "Start from the beginning and do not remember the position")
	playCmd.Flags().Bool("no-hwdec", false, "Decode in software")
}

var playCmd = &cobra.Command{
	Use:   "play <file|url>",
	Short: "Play a file or stream in the terminal player",
	Args:  cobra.ExactArgs(1),
	Example: "  eonplay play ~/Videos/talk.mkv\n" +
		"  eonplay play https://example.com/live.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("no-resume")) {
			viper.Set(key.PlaybackRememberPosition, false)
		}
		if lo.Must(cmd.Flags().GetBool("no-hwdec")) {
			viper.Set(key.HardwareEnabled, false)
		}

		CheckDependencies()

		// handleErr exits, so the core is stopped explicitly before it.
		c := core.New(core.Options{})
		if !c.Start() {
			err := startupError(c.Registry.Failures())
			c.Stop()
			handleErr(err)
		}

		err := tui.Run(&tui.Options{Origin: args[0], Core: c})
		c.Stop()
		handleErr(err)
	},
}

func startupError(failures []registry.Failure) error {
	if len(failures) == 0 {
		return errors.New("player failed to start")
	}

	return fmt.Errorf("player failed to start: %s", strings.Join(lo.Map(failures, func(f registry.Failure, _ int) string {
		return f.Error()
	}), "; "))
}
