package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/shell"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "sij",
		Short: "Steam Icon Janitor - repair blank Steam shortcut icons",
		Long: `sij (Steam Icon Janitor) finds your Steam installation, downloads the
icons your desktop and start-menu shortcuts point at, rewrites the shortcuts
to use them and can flush the Windows icon cache so the change shows up.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.SetVerbose(viper.GetBool("verbose"))
			util.SetQuiet(viper.GetBool("quiet"))
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/sij.yaml or ./sij.yaml)")
	rootCmd.PersistentFlags().String("db", "", "run history database (default <state dir>/"+store.DefaultFileName+")")
	rootCmd.PersistentFlags().String("artifacts", "artifacts", "directory for event logs and reports")
	rootCmd.PersistentFlags().String("steam-path", "", "Steam installation root (skips detection)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "do not ask before disruptive actions")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("artifacts", rootCmd.PersistentFlags().Lookup("artifacts"))
	viper.BindPFlag("steam_path", rootCmd.PersistentFlags().Lookup("steam-path"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes"))

	viper.SetDefault("provider", string(icons.DefaultProvider))
	viper.SetDefault("concurrency", icons.DefaultConcurrency)
	viper.SetDefault("http_timeout", icons.DefaultTimeout)
	viper.SetDefault("shell_timeout", shell.DefaultTimeout)
	viper.SetDefault("user_agent", icons.UserAgent)
}

func initConfig() {
	// .env values become environment variables; missing file is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		util.WarnLog("Failed to load .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("sij")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SIJ")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err := rootCmd.ExecuteContext(ctx)
	util.DebugLog("Finished in %s", time.Since(start).Round(time.Millisecond))

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
