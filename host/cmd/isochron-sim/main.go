// Command isochron-sim is an interactive console that drives the core
// without real hardware: an in-memory motor/heater/sensor rig stands in
// for the board, and the operator issues the same high-level events a UI
// terminal would (select program, confirm jar, pause, abort, ...).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"isochron/config"
	"isochron/drivers"
	"isochron/heater"
	"isochron/link"
	"isochron/link/serialport"
	"isochron/motor"
	"isochron/safety"
	"isochron/state"
	"isochron/telemetry"
)

var (
	device = flag.String("device", "", "Serial device path; empty runs fully in-memory")
	baud   = flag.Int("baud", 115200, "Baud rate")
)

func main() {
	flag.Parse()
	telemetry.SetWriter(func(s string) { fmt.Println(s) })

	fmt.Println("Isochron Simulator")
	fmt.Println("==================")

	stepper := drivers.NewMockStepper()
	motorC := motor.NewController(stepper, 0)
	sensor := &drivers.MockTempSensor{}
	output := &drivers.MockHeaterOutput{}
	heaterCfg := config.DefaultHeaterConfig("main")
	heaterC := heater.NewController(heaterCfg, output, sensor)
	mon := safety.NewMonitor()

	var port serialport.Port
	if *device != "" {
		cfg := serialport.DefaultConfig(*device)
		cfg.Baud = *baud
		p, err := serialport.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to open %s: %v\n", *device, err)
			os.Exit(1)
		}
		port = p
	} else {
		port = serialport.NewMockPort()
	}
	lk := link.New(port)

	temp := int16(20)
	profiles := []config.Profile{
		{Label: "wash", Kind: config.Clean, RPM: 80, DurationS: 600, Direction: config.Clockwise},
		{Label: "rinse", Kind: config.Rinse, RPM: 60, DurationS: 300, Direction: config.Alternate, Iterations: 3},
		{Label: "dry", Kind: config.Dry, RPM: 0, DurationS: 1200, Direction: config.Clockwise, TemperatureC: &temp},
	}
	jars := []config.JarConfig{{Name: "jar1", HeaterName: "main"}}
	programs := []config.Program{
		{Label: "quick", Steps: []config.ProgramStep{{Jar: "jar1", Profile: "wash"}}},
		{Label: "full", Steps: []config.ProgramStep{
			{Jar: "jar1", Profile: "wash"},
			{Jar: "jar1", Profile: "rinse"},
			{Jar: "jar1", Profile: "dry"},
		}},
	}
	heaters := map[string]*heater.Controller{"main": heaterC}

	ctrl := state.NewController(profiles, jars, programs, heaters, motorC, mon, lk)
	ctrl.BootComplete()
	var tune *heater.Autotune

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	simClock := time.Duration(0)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		parts, err := shlex.Split(scanner.Text())
		if err != nil || len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("goodbye")
			return
		case "help", "?":
			printHelp()
		case "select":
			if len(parts) < 2 {
				fmt.Println("usage: select <program>")
				continue
			}
			if err := ctrl.SelectProgram(parts[1]); err != nil {
				fmt.Println("error:", err)
			}
		case "start":
			if err := ctrl.Start(); err != nil {
				fmt.Println("error:", err)
			}
		case "confirm":
			ctrl.ConfirmJar()
		case "pause":
			ctrl.Pause()
		case "resume":
			ctrl.Resume()
		case "abort":
			ctrl.Abort()
		case "ack":
			ctrl.AcknowledgeError()
		case "next":
			ctrl.NextStep()
		case "spinoff-done":
			ctrl.FinishSpinOff()
		case "autotune":
			target := 50.0
			if len(parts) > 1 {
				if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
					target = v
				}
			}
			tune = heater.NewAutotune(sensor, output, target, float64(heaterCfg.MaxTempC), 2)
			ctrl.StartAutotune(tune, simClock)
		case "autotune-cancel":
			ctrl.CancelAutotune()
		case "temp":
			if len(parts) < 2 {
				fmt.Println("usage: temp <centi-celsius>")
				continue
			}
			v, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			sensor.CentiCelsius = int32(v)
			mon.UpdateTemperature(int16(v/10), false)
		case "tick":
			seconds := uint32(1)
			if len(parts) > 1 {
				if v, err := strconv.Atoi(parts[1]); err == nil {
					seconds = uint32(v)
				}
			}
			simClock += time.Duration(seconds) * time.Second
			ctrl.Tick(seconds, simClock)
		case "status":
			fmt.Printf("state=%v rpm=%d heater=%v\n", ctrl.Status().State, stepper.RPM, output.On)
		default:
			fmt.Println("unknown command, type 'help'")
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  select <program>     choose a program by label
  start                 begin the selected program (-> awaiting_jar)
  confirm               confirm jar/spinoff placement
  pause / resume        pause or resume the running profile
  abort                 return to idle immediately
  ack                   acknowledge a recoverable fault
  next                  advance past a completed step
  spinoff-done          finish the manual spin-off handshake
  autotune [target-C]   begin a relay autotune (default target 50C)
  autotune-cancel       cancel an in-progress autotune
  temp <centi-C>        set the simulated temperature reading
  tick [seconds]        advance the simulated clock (default 1s)
  status                print the current machine status
  quit                  exit`)
}
