// Package cli provides the command-line interface of easyread. It handles
// flag parsing, command creation and configuration management using cobra
// and viper.
package cli
