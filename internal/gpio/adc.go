package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/experimental/devices/ads1x15"
	"periph.io/x/periph/host"
)

// adcReference is the supply the light sensor divider runs from. Readings
// are scaled against it, not against the gain range periph picks (6.144V).
const adcReference = 5 * physic.Volt

// ADCInput samples one channel of an ADS1115 on an I2C bus. The Pi has no
// analog inputs of its own.
type ADCInput struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// NewADCInput opens the named I2C bus ("" for the first one) and configures
// channel (0-3) for single-ended reads against a 5V reference.
func NewADCInput(busName string, channel int) (*ADCInput, error) {
	ch, err := adsChannel(channel)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	pin, err := adc.PinForChannel(ch, adcReference, 128*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("configure adc channel %d: %w", channel, err)
	}

	return &ADCInput{bus: bus, pin: pin}, nil
}

// ReadAnalog takes one conversion and scales it to 0..AnalogMax.
func (a *ADCInput) ReadAnalog() (int, error) {
	sample, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	return scaleVolts(sample.V), nil
}

// Close halts the channel and releases the bus.
func (a *ADCInput) Close() error {
	var errs []error
	if a.pin != nil {
		if err := a.pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt adc pin: %w", err))
		}
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func adsChannel(channel int) (ads1x15.Channel, error) {
	switch channel {
	case 0:
		return ads1x15.Channel0, nil
	case 1:
		return ads1x15.Channel1, nil
	case 2:
		return ads1x15.Channel2, nil
	case 3:
		return ads1x15.Channel3, nil
	}
	return 0, fmt.Errorf("adc channel %d out of range 0-3", channel)
}

// scaleVolts maps 0..adcReference onto 0..AnalogMax, clamping negative
// (below ground) and over-range values.
func scaleVolts(v physic.ElectricPotential) int {
	if v <= 0 {
		return 0
	}
	if v >= adcReference {
		return AnalogMax
	}
	return int(int64(v) * AnalogMax / int64(adcReference))
}
