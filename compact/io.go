package compact

import (
	"encoding/binary"
	"io"
)

// Records are stored little-endian, Lo then Hi.

// ReadRecord reads one record from r. A clean end of stream returns io.EOF;
// a record cut short returns io.ErrUnexpectedEOF.
func ReadRecord(r io.Reader) (Record, error) {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Record{}, err
	}
	return Record{
		Lo: binary.LittleEndian.Uint64(buf[0:8]),
		Hi: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}

// WriteRecord writes one record to w.
func WriteRecord(w io.Writer, rec Record) error {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], rec.Lo)
	binary.LittleEndian.PutUint64(buf[8:16], rec.Hi)
	_, err := w.Write(buf[:])
	return err
}
