package ssrp

// Tag is the first byte of every SSRP datagram.
type Tag uint8

const (
	// TagClientUnicastEx asks the browser for every instance on the host.
	TagClientUnicastEx Tag = 0x03
	// TagClientUnicastInst asks the browser to resolve one named instance.
	TagClientUnicastInst Tag = 0x04
	// TagServerResponse carries instance metadata back to the client.
	TagServerResponse Tag = 0x05
)

const (
	// HeaderLen is tag plus the little-endian u16 payload length.
	HeaderLen = 3
	// DefaultPort is the well-known browser service port.
	DefaultPort = 1434
	// MaxResponseSize is the largest SVR_RESP the length field can describe.
	MaxResponseSize = HeaderLen + int(^uint16(0))
)

func (t Tag) String() string {
	switch t {
	case TagClientUnicastEx:
		return "CLNT_UCAST_EX"
	case TagClientUnicastInst:
		return "CLNT_UCAST_INST"
	case TagServerResponse:
		return "SVR_RESP"
	default:
		return "UNKNOWN"
	}
}
