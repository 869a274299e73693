package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"servofw/host/monitor"
)

var (
	logDir        string
	logIntervalMs int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record decoded debug samples to rotating CSV files",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logDir, "dir", "servofw-logs", "Directory for CSV log files")
	logCmd.Flags().IntVar(&logIntervalMs, "interval-ms", 10, "Minimum interval between rows")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	port, err := openPort()
	if err != nil {
		return err
	}
	defer port.Close()

	logger := monitor.NewLogger(monitor.LoggerConfig{
		Path:       logDir,
		IntervalMs: logIntervalMs,
	})
	defer logger.Close()

	fmt.Printf("servofw-host log -> %s\n", logDir)

	dec := monitor.NewDecoder(port)
	for {
		sample, err := dec.Next()
		if err != nil {
			log.Printf("[log] read error: %v", err)
			continue
		}
		logger.Record(sample)
	}
}
