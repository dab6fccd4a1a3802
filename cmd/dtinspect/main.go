// Command dtinspect lists the groups and variables of netCDF containers and
// Zarr stores written by datatree, and converts netCDF containers to Zarr.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dtinspect [command] (flags)",
	Short: "datatree container inspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		ncCmd,
		zarrCmd,
		convertCmd,
	)

	for _, cmd := range []*cobra.Command{ncCmd, zarrCmd} {
		cmd.Flags().BoolVarP(
			&showAttrs, "attrs", "a", false, "also list group and variable attributes")
	}

	convertCmd.Flags().StringVarP(
		&convertMode, "mode", "m", "w-", "zarr write mode of the root group (w, w-, a, a-, r+)")
	convertCmd.Flags().StringVar(
		&convertCompression, "compression", "zstd", "chunk compressor (none, zstd, s2, lz4)")
	convertCmd.Flags().BoolVar(
		&convertConsolidated, "consolidated", true, "write .zmetadata after all groups")
	convertCmd.Flags().BoolVar(
		&convertInherit, "inherit-coords", false, "write ancestor coordinates into every group")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
