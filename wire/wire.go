// Package wire implements the telemetry packets the pendant sends over its
// serial link.
//
// A packet is a sync byte, a type byte, the payload and a little-endian
// CRC-32 (IEEE) over type and payload. Readers skip bytes until they see
// a sync byte, so a monitor can attach mid-stream.
package wire

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"pendant-go/errcode"
)

// Endianness of every multi-byte field.
var Endianness = binary.LittleEndian

// Sync starts every packet.
const Sync byte = 0xC5

// MaxMessage bounds the length of a LogPacket message.
const MaxMessage = 512

// PacketType identifies a payload.
type PacketType uint8

const (
	TypeHello PacketType = iota + 1
	TypeFrame
	TypeLog
)

func (t PacketType) String() string {
	switch t {
	case TypeHello:
		return "hello"
	case TypeFrame:
		return "frame"
	case TypeLog:
		return "log"
	default:
		return "unknown"
	}
}

// Packet is anything that can be sent over the wire.
type Packet interface {
	Type() PacketType
}

// HelloPacket is sent once when telemetry starts.
type HelloPacket struct {
	Program uint8
	TickHz  uint32
	NumLEDs uint8
}

// FramePacket carries one animation step.
type FramePacket struct {
	Seq    uint32
	Index  uint8
	Levels [6]uint8
}

// LogPacket carries a free-form line.
type LogPacket struct {
	Message string
}

func (HelloPacket) Type() PacketType { return TypeHello }
func (FramePacket) Type() PacketType { return TypeFrame }
func (LogPacket) Type() PacketType   { return TypeLog }

const (
	helloSize = 1 + 4 + 1
	frameSize = 4 + 1 + 6
	crcSize   = 4
)

// Reader is what ReadPacket consumes.
type Reader interface {
	io.ByteReader
	io.Reader
}

// AppendPacket appends the encoded packet to dst.
func AppendPacket(dst []byte, p Packet) ([]byte, error) {
	start := len(dst)
	dst = append(dst, Sync, byte(p.Type()))

	switch p := p.(type) {
	case HelloPacket:
		dst = append(dst, p.Program)
		dst = Endianness.AppendUint32(dst, p.TickHz)
		dst = append(dst, p.NumLEDs)
	case FramePacket:
		dst = Endianness.AppendUint32(dst, p.Seq)
		dst = append(dst, p.Index)
		dst = append(dst, p.Levels[:]...)
	case LogPacket:
		if len(p.Message) > MaxMessage {
			return dst[:start], &errcode.E{C: errcode.PacketTooLarge, Op: "wire.append", Msg: "log message"}
		}
		dst = Endianness.AppendUint16(dst, uint16(len(p.Message)))
		dst = append(dst, p.Message...)
	default:
		return dst[:start], &errcode.E{C: errcode.UnknownPacket, Op: "wire.append"}
	}

	sum := crc32.ChecksumIEEE(dst[start+1:])
	return Endianness.AppendUint32(dst, sum), nil
}

// WritePacket encodes p and writes it with a single Write call.
func WritePacket(w io.Writer, p Packet) error {
	var buf [32]byte
	b, err := AppendPacket(buf[:0], p)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadPacket skips to the next sync byte and decodes one packet.
func ReadPacket(r Reader) (Packet, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == Sync {
			break
		}
	}

	hash := crc32.NewIEEE()
	tr := io.TeeReader(r, hash)

	var hdr [1]byte
	if err := readFull(tr, hdr[:]); err != nil {
		return nil, err
	}

	var pkt Packet
	switch ptype := PacketType(hdr[0]); ptype {
	case TypeHello:
		var b [helloSize]byte
		if err := readFull(tr, b[:]); err != nil {
			return nil, err
		}
		pkt = HelloPacket{
			Program: b[0],
			TickHz:  Endianness.Uint32(b[1:5]),
			NumLEDs: b[5],
		}

	case TypeFrame:
		var b [frameSize]byte
		if err := readFull(tr, b[:]); err != nil {
			return nil, err
		}
		p := FramePacket{
			Seq:   Endianness.Uint32(b[0:4]),
			Index: b[4],
		}
		copy(p.Levels[:], b[5:])
		pkt = p

	case TypeLog:
		var lb [2]byte
		if err := readFull(tr, lb[:]); err != nil {
			return nil, err
		}
		n := Endianness.Uint16(lb[:])
		if n > MaxMessage {
			return nil, &errcode.E{C: errcode.PacketTooLarge, Op: "wire.read", Msg: "log message"}
		}
		msg := make([]byte, n)
		if err := readFull(tr, msg); err != nil {
			return nil, err
		}
		pkt = LogPacket{Message: string(msg)}

	default:
		return nil, &errcode.E{C: errcode.UnknownPacket, Op: "wire.read"}
	}

	want := hash.Sum32()
	var cb [crcSize]byte
	if err := readFull(r, cb[:]); err != nil {
		return nil, err
	}
	if Endianness.Uint32(cb[:]) != want {
		return nil, &errcode.E{C: errcode.ChecksumMismatch, Op: "wire.read", Msg: ptypeName(pkt)}
	}
	return pkt, nil
}

func ptypeName(p Packet) string { return p.Type().String() }

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errcode.Wrap(errcode.ShortPacket, "wire.read", err)
		}
		return err
	}
	return nil
}
