package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"pendant-go/errcode"
	"pendant-go/wire"
)

// monitor decodes packets and keeps counters.
type monitor struct {
	log zerolog.Logger

	hello   *wire.HelloPacket
	lastSeq uint32
	frames  uint64
	gaps    uint64
	bad     uint64
}

// readLoop decodes until r fails. Corrupt packets are counted and skipped.
func (m *monitor) readLoop(ctx context.Context, r wire.Reader) error {
	for ctx.Err() == nil {
		p, err := wire.ReadPacket(r)
		if err != nil {
			switch errcode.Of(err) {
			case errcode.ChecksumMismatch, errcode.UnknownPacket, errcode.PacketTooLarge:
				m.bad++
				m.log.Warn().Err(err).Msg("bad packet")
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "read packet")
		}
		m.handle(p)
	}
	return ctx.Err()
}

func (m *monitor) handle(p wire.Packet) {
	switch p := p.(type) {
	case wire.HelloPacket:
		m.hello = &p
		m.lastSeq = 0
		m.log.Info().
			Uint8("program", p.Program).
			Uint32("tick_hz", p.TickHz).
			Uint8("leds", p.NumLEDs).
			Msg("hello")

	case wire.FramePacket:
		if m.lastSeq != 0 && p.Seq != m.lastSeq+1 {
			m.gaps++
			m.log.Warn().Uint32("after", m.lastSeq).Uint32("seq", p.Seq).Msg("frames lost")
		}
		m.lastSeq = p.Seq
		m.frames++
		m.log.Debug().
			Uint32("seq", p.Seq).
			Uint8("index", p.Index).
			Uints8("levels", p.Levels[:]).
			Msg("frame")

	case wire.LogPacket:
		m.log.Info().Str("msg", p.Message).Msg("pendant")
	}
}

func (m *monitor) summary() {
	m.log.Info().
		Bool("hello", m.hello != nil).
		Uint64("frames", m.frames).
		Uint64("gaps", m.gaps).
		Uint64("bad", m.bad).
		Msg("summary")
}
