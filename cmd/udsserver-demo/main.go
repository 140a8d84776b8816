// Command udsserver-demo runs a uds.Server against either a real
// CAN-over-serial adapter or an in-process loopback bus, answering
// requests with ecu.Simulator's demo callbacks. Pass -gui to also open
// a live status monitor.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"udsserver/canbus"
	"udsserver/drivers"
	"udsserver/ecu"
	"udsserver/gui"
	"udsserver/isotp"
	"udsserver/logging"
	"udsserver/services"
	"udsserver/uds"
)

func main() {
	var (
		portName = flag.String("port", "", "serial port of the CAN adapter; empty uses an in-process loopback bus")
		p2Ms     = flag.Uint("p2", 50, "p2 server max response time, in milliseconds")
		p2StarMs = flag.Uint("p2star", 5000, "p2* server max response time for pending responses, in milliseconds")
		s3Ms     = flag.Uint("s3", 5000, "session timeout, in milliseconds")
		withGUI  = flag.Bool("gui", false, "open a live status monitor window")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var monitor *gui.GUI
	if *withGUI {
		monitor = gui.RegisterGUI()
	}
	logger := logging.NewLogger(asSink(monitor))
	services.Register(services.ServiceLogger, logger)

	var (
		bus       uds.Bus
		serialBus *drivers.SerialBus
	)
	if *portName != "" {
		var err error
		serialBus, err = drivers.OpenSerialBus(*portName, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "udsserver-demo: %s\n", err)
			os.Exit(1)
		}
		bus = serialBus
	} else {
		loop, tester := drivers.NewLoopbackPair()
		bus = loop
		go driveLoopbackTester(ctx, tester, logger)
	}
	services.Register(services.ServiceBus, bus)

	clock := uds.SystemClock{}
	physLink := isotp.New(canbus.CanIDResponseDefault, bus, clock, 4095)
	funcLink := isotp.New(canbus.CanIDResponseDefault, bus, clock, 4095)

	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		fmt.Fprintf(os.Stderr, "udsserver-demo: generating demo secret: %s\n", err)
		os.Exit(1)
	}
	sim := ecu.New(secret, logger)
	services.Register(services.ServiceECU, sim)

	server, err := uds.NewServer(uds.Config{
		PhysLink:   physLink,
		FuncLink:   funcLink,
		PhysRecvID: canbus.CanIDPhysicalDefault,
		FuncRecvID: canbus.CanIDFunctionalDefault,
		SendID:     canbus.CanIDResponseDefault,
		Bus:        bus,
		Clock:      clock,
		P2Ms:       uint32(*p2Ms),
		P2StarMs:   uint32(*p2StarMs),
		S3Ms:       uint32(*s3Ms),
		Callbacks:  sim.Callbacks(),
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "udsserver-demo: %s\n", err)
		os.Exit(1)
	}
	services.Register(services.ServiceServer, server)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.WriteToLog("udsserver-demo: received shutdown signal", logging.LogTypeLog)
		cancel()
	}()

	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if serialBus != nil {
					_ = serialBus.Close()
				}
				return
			case <-ticker.C:
				server.Poll()
			}
		}
	}()

	if monitor != nil {
		monitor.Start(ctx)
		return
	}

	<-ctx.Done()
}

// driveLoopbackTester sends a TesterPresent frame periodically so a
// loopback demo run shows observable traffic without a real tester
// attached. It is itself a tiny ISO-TP client over the paired bus.
func driveLoopbackTester(ctx context.Context, bus uds.Bus, logger *logging.Logger) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := []byte{0x3E, 0x00} // TesterPresent, subfunction zeroSubFunction
			frame := append([]byte{byte(len(payload) & 0x0F)}, payload...)
			if err := bus.CANTx(canbus.CanIDPhysicalDefault, frame); err != nil {
				logger.WriteToLog(fmt.Sprintf("udsserver-demo: loopback tester send failed: %s", err), logging.LogTypeLog)
			}
		}
	}
}

// asSink adapts a *gui.GUI to logging.Sink, returning a nil Sink when
// monitor is nil rather than a non-nil interface wrapping a nil
// pointer, which would otherwise defeat the logger's nil check.
func asSink(monitor *gui.GUI) logging.Sink {
	if monitor == nil {
		return nil
	}
	return monitor
}
