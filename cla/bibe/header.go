// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package bibe

import (
	"encoding/binary"
	"fmt"

	"github.com/howeyc/crc16"
)

var headerCRCTable = crc16.MakeTable(crc16.CCITT)

// encodeHeader builds the per-bundle BIBE header: the destination lower-EID (extracted from
// the CLA address's "#" suffix) and the serialized bundle length, trailed by a CRC-16/CCITT
// over both fields so a corrupted header is caught before the bundle body is misinterpreted.
func encodeHeader(lowerEID string, bundleLen int) []byte {
	body := make([]byte, 2+len(lowerEID)+4)
	binary.BigEndian.PutUint16(body[0:2], uint16(len(lowerEID)))
	copy(body[2:], lowerEID)
	binary.BigEndian.PutUint32(body[2+len(lowerEID):], uint32(bundleLen))

	crc := crc16.Checksum(body, headerCRCTable)

	header := make([]byte, len(body)+2)
	copy(header, body)
	binary.BigEndian.PutUint16(header[len(body):], crc)
	return header
}

// headerState accumulates an incoming BIBE header byte-by-byte as the RX parser chain feeds it.
type headerState struct {
	buf         []byte
	eidLen      int
	haveEIDLen  bool
	bundleLen   int
	haveAllLens bool
}

func newHeaderState() *headerState {
	return &headerState{}
}

func (h *headerState) reset() {
	*h = headerState{}
}

// feed consumes one header byte. It returns done=true once the full header (including its
// trailing CRC) has been read and validated, at which point lowerEID and bundleLen are set and
// the caller should switch to reading bundleLen raw bytes next.
func (h *headerState) feed(b byte) (done bool, lowerEID string, bundleLen int, err error) {
	h.buf = append(h.buf, b)

	if !h.haveEIDLen {
		if len(h.buf) < 2 {
			return false, "", 0, nil
		}
		h.eidLen = int(binary.BigEndian.Uint16(h.buf))
		h.haveEIDLen = true
		return false, "", 0, nil
	}

	headerLen := 2 + h.eidLen + 4 + 2
	if len(h.buf) < headerLen {
		return false, "", 0, nil
	}

	body := h.buf[:headerLen-2]
	wantCRC := binary.BigEndian.Uint16(h.buf[headerLen-2:])
	if gotCRC := crc16.Checksum(body, headerCRCTable); gotCRC != wantCRC {
		return false, "", 0, fmt.Errorf("bibe: header CRC mismatch (want %04x, got %04x)", wantCRC, gotCRC)
	}

	eid := string(h.buf[2 : 2+h.eidLen])
	length := int(binary.BigEndian.Uint32(h.buf[2+h.eidLen : 2+h.eidLen+4]))
	return true, eid, length, nil
}
