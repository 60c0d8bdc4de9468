// Package subcommands provides the bucket subcommands (upload, process).
package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var (
	uploadPaths   []string
	uploadProcess bool
	uploadSteer   string
)

// UploadCmd copies local files into the bucket.
var UploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files to the bucket",
	Long: "Upload files to the bucket.\n\n" +
		"Sends each file to the daemon, which stores it in the bucket under its base name. " +
		"With --process the bucket is processed into workflow proposals right away.",
	Example: `  # Upload a clip and a logo
  phoenix bucket upload clip.mp4 logo.png

  # Upload and propose workflows steered toward short-form video
  phoenix bucket upload clip.mp4 --process --steer "short-form vertical video"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateUpload,
	RunE:    runUpload,
}

func init() {
	UploadCmd.Flags().BoolVar(&uploadProcess, "process", false, "Process the bucket after uploading")
	UploadCmd.Flags().StringVar(&uploadSteer, "steer", "", "Steering text for proposals (with --process)")
}

func validateUpload(cmd *cobra.Command, args []string) error {
	resolved, err := cmdutil.ResolvePaths(args)
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}
	for _, p := range resolved {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("file %s does not exist", p)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
	}
	uploadPaths = resolved

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := cmdutil.NewClient(daemonclient.UploadTimeout)
	if err != nil {
		return err
	}

	result, err := client.Upload(cmd.Context(), uploadPaths)
	if err != nil {
		return fmt.Errorf("failed to upload; %w", cmdutil.WrapClientError(err))
	}

	fmt.Fprintln(out, styles.Heading.Render("Uploaded"))
	fmt.Fprintln(out, styles.Bullets(result.Uploaded, "nothing"))

	if !uploadProcess {
		return nil
	}
	return process(cmd, uploadSteer)
}
