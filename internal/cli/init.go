package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clockbody/pkg/config"
)

// initCommand creates the init command that writes a default job file.
func (c *CLI) initCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.FileName + " job file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().Encode(path); err != nil {
				if os.IsExist(err) {
					return fmt.Errorf("%s already exists", path)
				}
				return err
			}
			printSuccess("Wrote %s", path)
			printNextStep("Edit it, then run", "clockbody generate")
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", config.FileName, "job file to create")

	return cmd
}
