// spa-poll polls an Arctic Spa controller and prints its state.
//
// Without -host it scans the local subnet for a controller first. It
// then connects, fetches the main status messages and prints them in
// protobuf text format. The command flags send a single control action
// before fetching, so the effect is visible in the output.
//
// Usage:
//
//	spa-poll [options]
//
// Options:
//
//	-host     Controller address (default: discover on the local subnet)
//	-port     Controller TCP port (default: 65534)
//	-timeout  Fetch timeout (default: 5s)
//	-verbose  Log protocol activity
//	-lights   Switch the lights on or off ("on"/"off")
//	-pump1    Set pump 1 ("off"/"low"/"high")
//	-temp     Set the temperature setpoint in °F (59-104)
//
// Example:
//
//	spa-poll -host 192.168.1.42 -lights on -temp 102
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pion/logging"

	"github.com/poolhouse/arcticspa/pkg/discovery"
	"github.com/poolhouse/arcticspa/pkg/schema"
	"github.com/poolhouse/arcticspa/pkg/spa"
)

func main() {
	var (
		host    = flag.String("host", "", "controller address (default: discover)")
		port    = flag.Int("port", 0, "controller TCP port")
		timeout = flag.Duration("timeout", 5*time.Second, "fetch timeout")
		verbose = flag.Bool("verbose", false, "log protocol activity")
		lights  = flag.String("lights", "", "switch the lights (on/off)")
		pump1   = flag.String("pump1", "", "set pump 1 (off/low/high)")
		temp    = flag.Int("temp", 0, "temperature setpoint in °F")
	)
	flag.Parse()

	var loggerFactory logging.LoggerFactory
	if *verbose {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	addr := *host
	if addr == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Print("no -host given, scanning the local subnet")
		found, err := discovery.Search(ctx, discovery.Config{LoggerFactory: loggerFactory})
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		if len(found) == 0 {
			log.Fatal("No controller found; use -host")
		}
		addr = found[0]
		log.Printf("found controller at %s", addr)
	}

	client, err := spa.New(spa.Config{
		Host:          addr,
		Port:          *port,
		FetchTimeout:  *timeout,
		LoggerFactory: loggerFactory,
		OnUnsolicited: func(m *spa.Message) {
			log.Printf("unsolicited: %s", m)
		},
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	if err := client.ConnectAttempts(3); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Disconnect()

	for _, cmd := range commands(*lights, *pump1, *temp) {
		if err := client.WriteCommand(cmd.action, cmd.value); err != nil {
			log.Fatalf("Command failed: %v", err)
		}
	}

	results, err := client.Fetch(
		schema.TypeLive,
		schema.TypeConfiguration,
		schema.TypeInformation,
		schema.TypeSettings,
		schema.TypeOnzenLive,
	)
	if err != nil {
		log.Printf("fetch: %v", err)
	}
	for _, t := range []schema.MessageType{
		schema.TypeLive,
		schema.TypeConfiguration,
		schema.TypeInformation,
		schema.TypeSettings,
		schema.TypeOnzenLive,
	} {
		if msg, ok := results[t]; ok {
			fmt.Println(msg)
		}
	}
}

type command struct {
	action schema.CommandType
	value  any
}

// commands turns the flag values into control actions. Invalid values
// are left for WriteCommand to reject.
func commands(lights, pump1 string, temp int) []command {
	var cmds []command
	if lights != "" {
		cmds = append(cmds, command{schema.CommandLights, lights == "on"})
	}
	if pump1 != "" {
		level := map[string]schema.PumpStatus{
			"off":  schema.PumpOff,
			"low":  schema.PumpLow,
			"high": schema.PumpHigh,
		}[pump1]
		cmds = append(cmds, command{schema.CommandPump1, level})
	}
	if temp != 0 {
		cmds = append(cmds, command{schema.CommandTemperatureSetpoint, temp})
	}
	return cmds
}
