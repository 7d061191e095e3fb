// Command garage-sensor polls the garage controller's ultrasonic ranging
// module and light pulse sensor and logs what they report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/garage-sensor/internal/gpio"
	"github.com/sweeney/garage-sensor/internal/logic"
	"github.com/sweeney/garage-sensor/internal/sensor"
	"github.com/sweeney/garage-sensor/internal/status"
)

// options holds parsed command-line settings.
type options struct {
	poll       time.Duration
	heartbeat  time.Duration
	chip       string
	pinTrigger int
	pinEcho    int
	adc        string
	adcChannel int
	i2cBus     string
	serialPort string
	printState bool
	ranging    logic.RangeConfig
	pulse      logic.PulseConfig
}

func main() {
	rangeDefaults := logic.DefaultRangeConfig()
	pulseDefaults := logic.DefaultPulseConfig()

	var opts options
	flag.DurationVar(&opts.poll, "poll", 50*time.Millisecond, "Sensor polling interval")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat log interval (0 to disable)")
	flag.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.IntVar(&opts.pinTrigger, "pin-trigger", gpio.DefaultPinTrigger, "BCM pin number for the ranging trigger")
	flag.IntVar(&opts.pinEcho, "pin-echo", gpio.DefaultPinEcho, "BCM pin number for the ranging echo")
	flag.DurationVar(&opts.ranging.RefreshInterval, "refresh", rangeDefaults.RefreshInterval, "Minimum time between distance measurements (0 measures every poll)")
	flag.DurationVar(&opts.ranging.EchoTimeout, "echo-timeout", rangeDefaults.EchoTimeout, "Maximum wait for an echo")
	flag.Float64Var(&opts.ranging.SoundVelocity, "sound-velocity", rangeDefaults.SoundVelocity, "Speed of sound in cm/µs")
	flag.StringVar(&opts.adc, "adc", "ads1115", `Analog source for the light sensor ("ads1115" or "serial")`)
	flag.IntVar(&opts.adcChannel, "adc-channel", gpio.DefaultADCChannel, "Analog channel of the light sensor")
	flag.StringVar(&opts.i2cBus, "i2c-bus", gpio.DefaultI2CBus, "I2C bus name for the ADS1115 (empty for first)")
	flag.StringVar(&opts.serialPort, "serial-port", "/dev/ttyUSB0", "Serial port of the ADC bridge")
	flag.IntVar(&opts.pulse.Upper, "light-upper", pulseDefaults.Upper, "Light level (or offset from average) that starts a pulse")
	flag.IntVar(&opts.pulse.Lower, "light-lower", pulseDefaults.Lower, "Light level (or offset from average) that ends a pulse")
	flag.DurationVar(&opts.pulse.Timeout, "light-timeout", pulseDefaults.Timeout, "Longest accepted light pulse")
	flag.BoolVar(&opts.pulse.Adaptive, "adaptive", pulseDefaults.Adaptive, "Treat light thresholds as offsets from a rolling average")
	flag.IntVar(&opts.pulse.WindowSize, "window", pulseDefaults.WindowSize, "Rolling average window size")
	flag.DurationVar(&opts.pulse.SampleInterval, "sample-interval", pulseDefaults.SampleInterval, "Rolling average sample interval")
	flag.BoolVar(&opts.printState, "print-state", false, "Print current state and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	if err := validate(opts); err != nil {
		return err
	}

	// Initialize GPIO
	ranger, err := gpio.NewRealRanger(opts.chip, opts.pinTrigger, opts.pinEcho)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer ranger.Close()

	// Initialize analog input
	analog, err := openAnalog(opts)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer analog.Close()

	clock := &loopClock{}
	ranging := sensor.NewRangingSensor(ranger, ranger, opts.ranging, clock.Now, gpio.BusyWait)
	pulse := sensor.NewPulseSensor(analog, opts.pulse, clock.Now)
	tracker := status.NewTracker(time.Now(), statusConfig(opts))

	// Print state mode
	if opts.printState {
		clock.t = time.Now()
		pulse.Begin()
		pulse.Update()
		d := ranging.GetDistance()
		tracker.UpdateRanging(d, ranging.LastMeasured(), ranging.Measurements())
		tracker.UpdatePulse(pulse.Phase(), pulse.LastValue(), pulse.Average(), pulse.Counts())
		fmt.Println(string(status.FormatJSON(tracker.Snapshot())))
		return nil
	}

	log.Printf("started: poll=%v refresh=%v light=%d/%d timeout=%v adaptive=%v adc=%s heartbeat=%v",
		opts.poll, opts.ranging.RefreshInterval, opts.pulse.Upper, opts.pulse.Lower,
		opts.pulse.Timeout, opts.pulse.Adaptive, opts.adc, opts.heartbeat)

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ranging, pulse, tracker, clock, opts.heartbeat, time.Now, ticker.C, sigCh)
}

// loopClock is the sensors' clock. runLoop stamps it once per tick so both
// sensors see the same instant.
type loopClock struct {
	t time.Time
}

// Now returns the time of the current tick.
func (c *loopClock) Now() time.Time {
	return c.t
}

func runLoop(ranging *sensor.RangingSensor, pulse *sensor.PulseSensor, tracker *status.Tracker, clock *loopClock, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	clock.t = now()
	hb := logic.NewHeartbeat(clock.t)
	pulse.Begin()

	lastDistance := logic.NoDistance
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			log.Printf("%s", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN"))
			return nil

		case <-tick:
			clock.t = now()

			pulse.Update()
			if pulse.DidPulse() {
				upper, lower := pulse.Thresholds()
				log.Printf("pulse: detected (level=%d average=%d thresholds=%d/%d)", pulse.LastValue(), pulse.Average(), upper, lower)
			}

			d := ranging.GetDistance()
			if d != lastDistance {
				log.Printf("distance: %dcm", d)
				lastDistance = d
			}

			tracker.UpdateRanging(d, ranging.LastMeasured(), ranging.Measurements())
			tracker.UpdatePulse(pulse.Phase(), pulse.LastValue(), pulse.Average(), pulse.Counts())

			if hbData := hb.Check(clock.t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v %s", hbData.Uptime, status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT"))
			}
		}
	}
}

func openAnalog(opts options) (gpio.AnalogInput, error) {
	switch opts.adc {
	case "ads1115":
		return gpio.NewADCInput(opts.i2cBus, opts.adcChannel)
	case "serial":
		return gpio.NewSerialAnalog(opts.serialPort, opts.adcChannel)
	}
	return nil, fmt.Errorf("unknown adc %q (want ads1115 or serial)", opts.adc)
}

// validate rejects settings that cannot work at all. Threshold ordering is
// left to the operator.
func validate(opts options) error {
	if opts.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", opts.poll)
	}
	if opts.ranging.EchoTimeout <= 0 {
		return fmt.Errorf("echo timeout must be positive, got %v", opts.ranging.EchoTimeout)
	}
	if opts.pulse.Adaptive && opts.pulse.WindowSize < 1 {
		return fmt.Errorf("window size must be at least 1, got %d", opts.pulse.WindowSize)
	}
	if opts.pulse.Lower >= opts.pulse.Upper {
		log.Printf("warning: light-lower (%d) is not below light-upper (%d)", opts.pulse.Lower, opts.pulse.Upper)
	}
	return nil
}

func statusConfig(opts options) status.Config {
	return status.Config{
		PollMs:         opts.poll.Milliseconds(),
		RefreshMs:      opts.ranging.RefreshInterval.Milliseconds(),
		HeartbeatMs:    opts.heartbeat.Milliseconds(),
		LightUpper:     opts.pulse.Upper,
		LightLower:     opts.pulse.Lower,
		LightTimeoutMs: opts.pulse.Timeout.Milliseconds(),
		Adaptive:       opts.pulse.Adaptive,
		ADC:            opts.adc,
	}
}
