package protocol

// Frame layout. The header carries the three single-byte status/type
// words plus reserved padding (the original C struct pads these out to
// word boundaries; we keep the same ten-byte header the spec reserves
// for it even though a byte each would do). The payload follows in the
// order fixed fields are listed in spec.md §6: username, password,
// secret, session id.
const (
	headerLen = 10

	offServerStatus  = 0
	offRequestStatus = 1
	offType          = 2

	usernameSlotLen  = MaxUsernameLen + 1
	passwordSlotLen  = MaxPasswordLen + 1
	secretSlotLen    = MaxSecretLen + 1
	sessionIDSlotLen = SessionIDLen + 1

	offUsername  = headerLen
	offPassword  = offUsername + usernameSlotLen
	offSecret    = offPassword + passwordSlotLen
	offSessionID = offSecret + secretSlotLen

	// FrameSize is the total length both client and server agree on at
	// build time. spec.md §6 quotes 234 as a minimum; this rounds each
	// field up by one byte for its terminator, as the spec permits.
	FrameSize = offSessionID + sessionIDSlotLen
)

// Packet is a type-tagged view over a frame-sized byte slice. It never
// copies the backing buffer; callers pass the mapped shared memory (or
// a scratch buffer in tests) directly.
type Packet struct {
	buf []byte
}

// Wrap returns a Packet backed by buf. buf must have length FrameSize.
func Wrap(buf []byte) Packet {
	if len(buf) != FrameSize {
		panic("protocol: frame buffer has wrong size")
	}
	return Packet{buf: buf}
}

// Scrub zeroes every byte of the frame and restores server_status to
// ONLINE, per §4.3's SCRUB step: the privacy guarantee that no
// subsequent client observes a prior client's secret.
func (p Packet) Scrub() {
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.SetServerStatus(StatusOnline)
}

func (p Packet) ServerStatus() ServerStatus {
	return ServerStatus(p.buf[offServerStatus])
}

func (p Packet) SetServerStatus(s ServerStatus) {
	p.buf[offServerStatus] = byte(s)
}

func (p Packet) RequestStatus() RequestStatus {
	return RequestStatus(p.buf[offRequestStatus])
}

func (p Packet) SetRequestStatus(s RequestStatus) {
	p.buf[offRequestStatus] = byte(s)
}

func (p Packet) Type() PacketType {
	return PacketType(p.buf[offType])
}

func (p Packet) SetType(t PacketType) {
	p.buf[offType] = byte(t)
}

func (p Packet) Username() string { return readField(p.buf[offUsername : offUsername+usernameSlotLen]) }
func (p Packet) SetUsername(s string) {
	writeField(p.buf[offUsername:offUsername+usernameSlotLen], s)
}

func (p Packet) Password() string { return readField(p.buf[offPassword : offPassword+passwordSlotLen]) }
func (p Packet) SetPassword(s string) {
	writeField(p.buf[offPassword:offPassword+passwordSlotLen], s)
}

func (p Packet) Secret() string { return readField(p.buf[offSecret : offSecret+secretSlotLen]) }
func (p Packet) SetSecret(s string) {
	writeField(p.buf[offSecret:offSecret+secretSlotLen], s)
}

func (p Packet) SessionID() string {
	return readField(p.buf[offSessionID : offSessionID+sessionIDSlotLen])
}
func (p Packet) SetSessionID(s string) {
	writeField(p.buf[offSessionID:offSessionID+sessionIDSlotLen], s)
}

// writeField copies s into dst, truncating at len(dst)-1 bytes, then
// forces a terminator at the last byte regardless of whether s filled
// the slot. This matches the original implementation's strncpy-then-
// terminate-at-CAP behavior (design note in spec.md §9): a source that
// exactly fills or overflows the slot never gets an implicit
// terminator from the copy itself.
func writeField(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst[:len(dst)-1], s)
	dst[len(dst)-1] = 0
}

// readField treats src as "up to len(src) bytes, terminator enforced
// on read" — it never trusts the sender to have null-terminated within
// bounds. The last byte of every field slot is always forced to zero
// by writeField/Scrub, so this is always well-bounded.
func readField(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
