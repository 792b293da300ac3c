package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/pkg/safe"
)

const maxFieldSize = 1 << 20

// Encoder serialises records with Bitcoin varints. The first error sticks and is returned by Bytes.
type Encoder struct {
	buf bytes.Buffer
	err error
}

func (e *Encoder) Uint(v uint64) {
	if e.err == nil {
		e.err = wire.WriteVarInt(&e.buf, 0, v)
	}
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint(1)
	} else {
		e.Uint(0)
	}
}

func (e *Encoder) Bytes(v []byte) {
	if e.err == nil {
		e.err = wire.WriteVarBytes(&e.buf, 0, v)
	}
}

func (e *Encoder) String(v string) { e.Bytes([]byte(v)) }

func (e *Encoder) Hash(h chainhash.Hash) {
	if e.err == nil {
		_, e.err = e.buf.Write(h[:])
	}
}

// Encode hands the raw writer to a wire type such as wire.BlockHeader or wire.MsgTx.
func (e *Encoder) Encode(fn func(w io.Writer) error) {
	if e.err == nil {
		e.err = fn(&e.buf)
	}
}

// Finish returns the encoded record.
func (e *Encoder) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

// Decoder reads what Encoder wrote. The first error sticks and is reported by Finish.
type Decoder struct {
	r   *bytes.Reader
	err error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(b)}
}

func (d *Decoder) Uint() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := wire.ReadVarInt(d.r, 0)
	d.err = err
	return v
}

func (d *Decoder) Uint32() uint32 {
	v := d.Uint()
	if d.err != nil {
		return 0
	}
	out, err := safe.Uint32(v)
	d.err = err
	return out
}

func (d *Decoder) Bool() bool { return d.Uint() == 1 }

func (d *Decoder) Bytes() []byte {
	if d.err != nil {
		return nil
	}
	v, err := wire.ReadVarBytes(d.r, 0, maxFieldSize, "field")
	d.err = err
	return v
}

func (d *Decoder) String() string { return string(d.Bytes()) }

func (d *Decoder) Hash() chainhash.Hash {
	var h chainhash.Hash
	if d.err == nil {
		_, d.err = io.ReadFull(d.r, h[:])
	}
	return h
}

func (d *Decoder) Decode(fn func(r io.Reader) error) {
	if d.err == nil {
		d.err = fn(d.r)
	}
}

// Finish reports the first decoding error, or an error when bytes are left over.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes", d.r.Len())
	}
	return nil
}

// Key joins a table prefix with key parts.
func Key(prefix string, parts ...[]byte) []byte {
	n := len(prefix)
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 0, n)
	k = append(k, prefix...)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

// Uint32Key encodes v big-endian so keys sort numerically.
func Uint32Key(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// Uint32FromKey reads the big-endian suffix written by Uint32Key.
func Uint32FromKey(key []byte) (uint32, error) {
	if len(key) < 4 {
		return 0, fmt.Errorf("key %x too short", key)
	}
	return binary.BigEndian.Uint32(key[len(key)-4:]), nil
}
