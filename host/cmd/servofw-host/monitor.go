package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"servofw/host/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print decoded debug samples as they arrive",
	RunE:  runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	port, err := openPort()
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("servofw-host monitor\n")
	fmt.Printf("Port: %s @ %d baud\n", portName, baudRate)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	dec := monitor.NewDecoder(port)
	for {
		sample, err := dec.Next()
		if err != nil {
			log.Printf("[monitor] read error: %v", err)
			continue
		}

		fmt.Printf("[%s] theta=%6.3f i_d=%6.2fA d_A=%7.3f p=%7.4f i=%7.4f d_V=%7.3f vel=%7.2f\n",
			sample.At.Format("15:04:05.000"),
			sample.Theta, sample.IDCommand, sample.DMeasured,
			sample.PidDP, sample.PidDIntegral, sample.DVCommand,
			sample.Velocity)
	}
}
