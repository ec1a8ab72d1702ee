package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eonplay/eonplay/intake"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/style"
	"github.com/invopop/jsonschema"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().BoolP("json", "j", false, "Print the media info as JSON")
	probeCmd.Flags().Bool("schema", false, "Print the JSON schema of the media info and exit")
	probeCmd.MarkFlagsMutuallyExclusive("json", "schema")
}

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Describe the streams and tags of a media file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(printJSON(cmd, jsonschema.Reflect(&media.Info{})))
			return
		}

		if len(args) == 0 {
			handleErr(errors.New("a media file is required"))
		}

		in, release := standaloneIntake()
		defer release()

		path := args[0]
		if result := in.ValidateMediaFile(path); result != media.Valid {
			handleErr(errors.New(in.ValidationErrorMessage(path, result)))
		}

		ctx, cancel := context.WithTimeout(context.Background(), intake.ExtractTimeout)
		defer cancel()
		info := in.ExtractMediaInfo(ctx, path)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJSON(cmd, info))
			return
		}

		cmd.Println(style.Title(lo.Ternary(info.Title != "", info.Title, path)))
		cmd.Println()
		cmd.Println(wordwrap.String(info.String(), outputWidth()))
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
