package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/pkg/note"
)

// defaultNoteFile is the file written by init when none is given.
const defaultNoteFile = "bon_livraison.toml"

// initCommand creates the init command that writes a default note.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a new delivery note with default values",
		Long: `Write a new delivery note with default values.

The file format follows the extension: .json writes JSON, anything else TOML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fileArg(args)
			if path == "" {
				path = defaultNoteFile
			}
			return runInit(path, force, time.Now())
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func runInit(path string, force bool, now time.Time) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	n := note.Default(now)
	if err := note.WriteFile(path, n); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Created %s", path)
	printDetail("Number %s · %d item(s)", n.Number, len(n.Items))
	printNextStep("Edit it", fmt.Sprintf("%s edit %s", appName, path))
	return nil
}
