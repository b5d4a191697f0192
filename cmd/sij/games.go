package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/remedy"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List installed games from every Steam library",
	RunE:  runGames,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	svc := remedy.New(&remedy.Config{SteamPath: viper.GetString("steam_path")})
	env, err := svc.Discover()
	if err != nil {
		return err
	}

	labels := make(map[string]string, len(env.Libraries))
	for _, lib := range env.Libraries {
		labels[lib.Path] = lib.Label
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APP ID\tNAME\tSIZE\tLIBRARY")
	var total int64
	for _, g := range env.Games {
		lib := labels[g.LibraryPath]
		if lib == "" {
			lib = g.LibraryPath
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.AppID, g.Name, util.FormatBytes(g.SizeBytes), lib)
		total += g.SizeBytes
	}
	if err := w.Flush(); err != nil {
		return err
	}

	util.InfoLog("%d games, %s on disk", len(env.Games), util.FormatBytes(total))
	return nil
}
