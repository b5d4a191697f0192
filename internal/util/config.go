package util

import "github.com/spf13/viper"

// AssumeYes reports whether destructive actions may run without a prompt.
// Set with --yes or SIJ_YES=true.
func AssumeYes() bool {
	return viper.GetBool("yes")
}
