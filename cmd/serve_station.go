package cmd

import (
	"github.com/Aslhee/MobileCafeServer/pkg/cmd/server"
	"github.com/spf13/cobra"
)

// serveStationCmd represents the serve station command
var serveStationCmd = &cobra.Command{
	Use:   "station",
	Short: "Serve the station control instance",
	Run:   server.RunServeStation(c),
}

func init() {
	serveCmd.AddCommand(serveStationCmd)
}
