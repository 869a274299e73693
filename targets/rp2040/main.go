//go:build rp2040

package main

import (
	"machine"
	"time"

	"servofw/core"
	"servofw/telemetry"
)

// Pin assignment. PWM outputs live on GPIO0-2 (see pwm.go); everything
// else is collected here.
const (
	pinDriverEnable = machine.GPIO3
	pinDriverPower  = machine.GPIO4
	pinDriverFault  = machine.GPIO5

	pinEncoderCS = machine.GPIO13 // SPI0: SCK=18 MOSI=19 MISO=16
	pinCanCS     = machine.GPIO9  // SPI1: SCK=10 MOSI=11 MISO=8

	pinDebugTx = machine.GPIO6
)

// activeServo is read by the bare PWM interrupt vector (pwm.go).
var activeServo *core.Servo

func main() {
	time.Sleep(100 * time.Millisecond)
	println("servofw starting")

	cfg := core.DefaultConfig()

	encoder, err := newSPIEncoder(machine.SPI0, pinEncoderCS)
	if err != nil {
		println("encoder init failed:", err.Error())
		return
	}

	driver := newGateDriver(pinDriverEnable, pinDriverPower, pinDriverFault)

	adc := newTripleADC()
	if err := adc.Configure(core.MapConfig(core.SampleCycles, cfg.AdcCycles)); err != nil {
		println("adc init failed:", err.Error())
		return
	}

	debug, err := newPIODebugSink(0, 0, pinDebugTx)
	if err != nil {
		println("debug uart init failed:", err.Error())
		debug = nil
	}

	registry := telemetry.NewRegistry()

	pwm := newPhaseTimer()

	var sink core.DebugSink
	if debug != nil {
		sink = debug
	}
	servo := core.New(&cfg, registry, encoder, driver, pwm, adc, sink)

	// Publish the instance before the first interrupt can fire.
	activeServo = servo
	pwm.Configure()

	can, err := newCANIngress(machine.SPI1, pinCanCS, servo)
	if err != nil {
		println("can init failed:", err.Error())
		can = nil
	}

	println("servofw running")

	// Foreground loop: millisecond supervisory poll plus command
	// ingress. Everything time-critical happens in the PWM interrupt.
	for {
		servo.PollMillisecond()
		if can != nil {
			can.Poll()
		}
		time.Sleep(time.Millisecond)
	}
}
