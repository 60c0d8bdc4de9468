// Package bucket provides the bucket parent command and subcommands.
package bucket

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/cmd/bucket/subcommands"
)

// BucketCmd is the parent command for the asset bucket.
var BucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Work with the asset bucket",
	Long: "Work with the asset bucket.\n\n" +
		"The bucket is the drop folder for raw assets. Processing it turns each file into a " +
		"workflow proposal that waits for approval before agents execute it.",
}

func init() {
	BucketCmd.AddCommand(subcommands.UploadCmd)
	BucketCmd.AddCommand(subcommands.ProcessCmd)
}
