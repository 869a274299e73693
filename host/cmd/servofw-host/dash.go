package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"servofw/host/dash"
	"servofw/host/monitor"
)

var (
	dashConfigPath string
	dashListenAddr string
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Serve decoded debug samples to websocket clients",
	RunE:  runDash,
}

func init() {
	dashCmd.Flags().StringVar(&dashConfigPath, "config", "servofw-host.yaml", "Path to config file")
	dashCmd.Flags().StringVar(&dashListenAddr, "listen", "", "Override listen address (e.g. :8080)")
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, args []string) error {
	cfg := dash.LoadConfig(dashConfigPath)
	if portName != "" {
		cfg.Serial.PortPath = portName
	}
	if cmd.Flags().Changed("baud") {
		cfg.Serial.BaudRate = baudRate
	}
	if dashListenAddr != "" {
		cfg.Server.ListenAddr = dashListenAddr
	}

	portName = cfg.Serial.PortPath
	baudRate = cfg.Serial.BaudRate
	port, err := openPort()
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[dash] received %v, shutting down", sig)
		cancel()
	}()

	server := dash.New(cfg)

	go func() {
		dec := monitor.NewDecoder(port)
		for ctx.Err() == nil {
			sample, err := dec.Next()
			if err != nil {
				continue
			}
			server.Offer(sample)
		}
	}()

	return server.Run(ctx)
}
