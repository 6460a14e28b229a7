package heater

// BangBang implements hysteresis control: ON at or below target-hysteresis,
// OFF at or above target, otherwise holds the previous command.
type BangBang struct {
	hysteresisC float64
	lastOn      bool
}

// NewBangBang builds a BangBang controller with the given hysteresis band
// in whole Celsius degrees.
func NewBangBang(hysteresisC float64) *BangBang {
	return &BangBang{hysteresisC: hysteresisC}
}

// Update returns the next ON/OFF command for the given temperature and
// target, both in Celsius.
func (b *BangBang) Update(tempC, targetC float64) bool {
	switch {
	case tempC <= targetC-b.hysteresisC:
		b.lastOn = true
	case tempC >= targetC:
		b.lastOn = false
	}
	return b.lastOn
}

// Reset clears the held command, e.g. on re-entering Running.
func (b *BangBang) Reset() {
	b.lastOn = false
}
