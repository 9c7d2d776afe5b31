//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"pendant-go/charlie"
	"pendant-go/errcode"
)

// modePin remembers whether the port last made it an input or an output.
type modePin struct {
	*gpiotest.Pin
	output bool
	calls  int
	fail   error
}

func (p *modePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.calls++
	p.output = false
	if p.fail != nil {
		return p.fail
	}
	return p.Pin.In(pull, edge)
}

func (p *modePin) Out(l gpio.Level) error {
	p.calls++
	p.output = true
	if p.fail != nil {
		return p.fail
	}
	return p.Pin.Out(l)
}

func newPins() [3]*modePin {
	return [3]*modePin{
		{Pin: &gpiotest.Pin{N: "GPIO17", Num: 17}},
		{Pin: &gpiotest.Pin{N: "GPIO27", Num: 27}},
		{Pin: &gpiotest.Pin{N: "GPIO22", Num: 22}},
	}
}

func asPinIO(ps [3]*modePin) [3]gpio.PinIO {
	return [3]gpio.PinIO{ps[0], ps[1], ps[2]}
}

func states(ps [3]*modePin) [3]State {
	var out [3]State
	for i, p := range ps {
		switch {
		case !p.output:
			out[i] = HiZ
		case p.Read() == gpio.High:
			out[i] = High
		default:
			out[i] = Low
		}
	}
	return out
}

func TestPeriphPort_DrivesEachLED(t *testing.T) {
	ps := newPins()
	port, err := NewPeriphPort(asPinIO(ps))
	require.NoError(t, err)
	assert.Equal(t, [3]State{HiZ, HiZ, HiZ}, states(ps))

	s := charlie.NewScanner(port)
	lv := charlie.Levels{8, 8, 8, 8, 8, 8}
	for led, l := range charlie.Topology {
		s.Step(&lv)
		var want [3]State
		for i := range want {
			want[i] = PinState(l.Mask(), l.Anode, i)
		}
		assert.Equal(t, want, states(ps), "LED%d", led)
		for i := 0; i < charlie.SubFrameTicks-1; i++ {
			s.Step(&lv)
		}
	}

	require.NoError(t, port.Halt())
	assert.Equal(t, [3]State{HiZ, HiZ, HiZ}, states(ps))
	assert.NoError(t, port.Err())
}

func TestPeriphPort_SkipsUnchangedPins(t *testing.T) {
	ps := newPins()
	port, err := NewPeriphPort(asPinIO(ps))
	require.NoError(t, err)
	before := ps[0].calls + ps[1].calls + ps[2].calls

	port.SetOutput(charlie.PinA)
	port.SetDirection(0)
	assert.Equal(t, before, ps[0].calls+ps[1].calls+ps[2].calls)
}

func TestPeriphPort_KeepsFirstError(t *testing.T) {
	ps := newPins()
	port, err := NewPeriphPort(asPinIO(ps))
	require.NoError(t, err)

	ps[1].fail = errors.New("ebusy")
	port.SetOutput(charlie.PinA)
	port.SetDirection(charlie.PinA | charlie.PinB)
	ps[1].fail = errors.New("second")
	port.SetDirection(0)

	require.Error(t, port.Err())
	assert.Contains(t, port.Err().Error(), "ebusy")
}

func TestNewPeriphPort_RejectsMissingPin(t *testing.T) {
	ps := newPins()
	pins := asPinIO(ps)
	pins[2] = nil
	_, err := NewPeriphPort(pins)
	assert.Equal(t, errcode.UnknownPin, errcode.Of(err))
}

func TestOpenPeriphPort_UnknownName(t *testing.T) {
	_, err := OpenPeriphPort([3]string{"NOPE_A", "NOPE_B", "NOPE_C"})
	assert.Equal(t, errcode.UnknownPin, errcode.Of(err))
}
