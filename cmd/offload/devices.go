package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitrook/offload/internal/device"
	"github.com/bitrook/offload/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List mounted volumes that can be backed up",
	RunE:  runDevices,
}

func init() {
	devicesCmd.Flags().Bool("all", false, "include non-removable volumes")
}

func runDevices(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all") //nolint:errcheck // flag name is hardcoded

	devs, err := device.List()
	if err != nil {
		return fmt.Errorf("enumerate volumes: %w", err)
	}
	if !all {
		devs = device.Removables(devs)
	}
	fmt.Fprint(os.Stdout, ui.RenderDeviceTable(devs))
	return nil
}
