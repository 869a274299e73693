// servofw-host is the host-side companion tool for the servo drive:
// it consumes the drive's debug stream over a serial port and prints,
// logs or serves the decoded samples.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"servofw/host/serial"
)

var (
	portName string
	baudRate int
)

var rootCmd = &cobra.Command{
	Use:   "servofw-host",
	Short: "Servo drive debug stream tools",
	Long: `servofw-host consumes the 12-byte debug frames the drive emits once
per control tick and turns them into something usable on a workstation:
a live text monitor, rotating CSV logs, or a websocket dashboard feed.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 3000000, "Baud rate")
}

// openPort opens the configured serial port for the debug stream.
func openPort() (serial.Port, error) {
	if portName == "" {
		return nil, fmt.Errorf("no serial port given; use --port")
	}

	cfg := serial.DefaultConfig(portName)
	cfg.Baud = baudRate
	return serial.Open(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
