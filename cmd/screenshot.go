package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/core"
	"github.com/eonplay/eonplay/icon"
	"github.com/eonplay/eonplay/intake"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/open"
	"github.com/eonplay/eonplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const screenshotLoadTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(screenshotCmd)

	screenshotCmd.Flags().Int64P("at", "a", 0, "Position of the frame in milliseconds")
	screenshotCmd.Flags().StringP("output", "o", "", "Output file; the extension selects the format")
	screenshotCmd.Flags().Bool("open", false, "Open the screenshot once it is written")
	screenshotCmd.Flags().String("with", "", "Application to open the screenshot with")
	lo.Must0(screenshotCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return intake.SupportedScreenshotFormats(), cobra.ShellCompDirectiveFilterFileExt
	}))

	screenshotCmd.SetOut(os.Stdout)
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot <file>",
	Short: "Save a single video frame as an image",
	Args:  cobra.ExactArgs(1),
	Example: "  eonplay screenshot talk.mkv --at 90000\n" +
		"  eonplay screenshot talk.mkv -o cover.jpg --open",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			at     = lo.Must(cmd.Flags().GetInt64("at"))
			output = lo.Must(cmd.Flags().GetString("output"))
		)

		// A one-off load must not touch the remembered positions.
		viper.Set(key.PlaybackRememberPosition, false)

		CheckDependencies()

		c := core.New(core.Options{})
		path, err := captureWith(c, args[0], at, output)
		c.Stop()
		handleErr(err)

		cmd.Printf("%s saved %s\n", style.Fg(color.Green)(icon.Get(icon.Camera)), style.Fg(color.Purple)(path))

		if lo.Must(cmd.Flags().GetBool("open")) || cmd.Flags().Changed("with") {
			handleErr(open.StartWith(path, lo.Must(cmd.Flags().GetString("with"))))
		}
	},
}

// captureWith starts c, loads origin and writes the frame at ms.
func captureWith(c *core.Core, origin string, ms int64, output string) (string, error) {
	if !c.Start() {
		return "", startupError(c.Registry.Failures())
	}

	loaded := make(chan bool, 1)
	id := c.Events.Subscribe(bus.MediaLoaded, func(e bus.Event) {
		select {
		case loaded <- e.Bool(bus.KeySuccess):
		default:
		}
	})
	defer c.Events.Unsubscribe(id)

	var problem string
	c.Do(func() {
		if result := c.Intake.ValidateMediaFile(origin); result != media.Valid {
			problem = c.Intake.ValidationErrorMessage(origin, result)
			return
		}
		if !c.Intake.LoadMediaFile(origin) {
			problem = fmt.Sprintf("could not open %s", origin)
		}
	})
	if problem != "" {
		return "", errors.New(problem)
	}

	select {
	case ok := <-loaded:
		if !ok {
			return "", fmt.Errorf("could not decode %s", origin)
		}
	case <-time.After(screenshotLoadTimeout):
		return "", fmt.Errorf("timed out loading %s", origin)
	}

	var (
		path string
		err  error
	)
	c.Do(func() {
		path, err = c.Intake.CaptureScreenshotAt(ms, output)
	})
	return path, err
}
