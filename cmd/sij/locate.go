package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/steam"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the detected Steam installation and its libraries",
	Long: `Locate the Steam installation (registry, then conventional install
directories) and list every library folder registered with it.

Use --steam-path to skip detection.`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	var inst steam.Installation
	if path := viper.GetString("steam_path"); path != "" {
		inst = steam.NewInstallation(path, "")
	} else {
		var err error
		inst, err = steam.NewLocator(nil).Locate()
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Installation: %s\n", inst.Path)
	fmt.Fprintf(out, "Source:       %s\n", inst.Source)
	if userID, ok := inst.UserID(); ok {
		fmt.Fprintf(out, "User:         %s\n", userID)
	}
	fmt.Fprintf(out, "Icon store:   %s\n", inst.IconStoreDir())

	libs := steam.NewLibraryResolver(nil).Resolve(inst)
	fmt.Fprintf(out, "\nLibraries (%d):\n", len(libs))
	for _, lib := range libs {
		if lib.Label != "" {
			fmt.Fprintf(out, "  %s (%s)\n", lib.Path, lib.Label)
		} else {
			fmt.Fprintf(out, "  %s\n", lib.Path)
		}
	}
	return nil
}
