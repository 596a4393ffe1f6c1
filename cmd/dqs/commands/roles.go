package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/dqs/internal/roles"
)

// rolesCmd represents the roles command
var rolesCmd = &cobra.Command{
	Use:   "roles [name]",
	Short: "Show the role catalog",
	Long: `Lists every built-in role profile with its dimension weights, critical
dimensions, alert threshold and required dataset signals. With a name,
shows that profile; unknown names resolve to the default role.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoles,
}

var rolesJSON bool

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "print profiles as JSON")
}

func runRoles(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	profiles := roles.Profiles()
	if len(args) == 1 {
		if _, ok := roles.Lookup(args[0]); !ok {
			PrintWarning(out, "Unknown role "+args[0]+", showing "+roles.DefaultRole)
		}
		profiles = []roles.Profile{roles.Get(args[0])}
	}

	if rolesJSON {
		return PrintJSON(out, profiles)
	}

	for _, p := range profiles {
		PrintProfile(out, p)
	}
	return nil
}
