// Package subcommands provides the platforms subcommands (add, list).
package subcommands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/phoenix/internal/cmdutil"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
	"github.com/leefowlercu/phoenix/internal/platforms"
	"github.com/leefowlercu/phoenix/internal/styles"
)

var (
	addType   string
	addURL    string
	addKeyRef string
)

// AddCmd registers a publishing platform.
var AddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a publishing platform",
	Long: "Register a publishing platform.\n\n" +
		"Registering an existing name replaces it. Webhook platforms need --url; " +
		"--api-key-ref names the environment variable holding the token sent as a bearer header.",
	Example: `  # A webhook that receives completed workflows
  phoenix platforms add blog --type webhook --url https://hooks.example.com/phoenix

  # A platform agents publish to themselves
  phoenix platforms add tiktok --type social`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateAdd,
	RunE:    runAdd,
}

func init() {
	AddCmd.Flags().StringVar(&addType, "type", platforms.TypeCustom, "Platform type (webhook, blog, social, video, code, custom)")
	AddCmd.Flags().StringVar(&addURL, "url", "", "Endpoint URL")
	AddCmd.Flags().StringVar(&addKeyRef, "api-key-ref", "", "Environment variable holding the API key")
}

func validateAdd(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(args[0]) == "" {
		return platforms.ErrEmptyName
	}
	if strings.EqualFold(addType, platforms.TypeWebhook) && addURL == "" {
		return errors.New("webhook platforms require --url")
	}
	if addURL != "" {
		u, err := url.Parse(addURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid --url %q", addURL)
		}
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.NewClient(daemonclient.DefaultTimeout)
	if err != nil {
		return err
	}

	result, err := client.AddPlatform(cmd.Context(), args[0], platforms.Config{
		Type:      addType,
		URL:       addURL,
		APIKeyRef: addKeyRef,
	})
	if err != nil {
		return fmt.Errorf("failed to add platform; %w", cmdutil.WrapClientError(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatPlatform(result.Platform))
	return nil
}

func formatPlatform(p platforms.Platform) string {
	line := fmt.Sprintf("%s (%s) %s", p.Name, p.Type, styles.Status(p.Status))
	if p.URL != "" {
		line += " " + styles.MutedText.Render(p.URL)
	}
	return line
}
