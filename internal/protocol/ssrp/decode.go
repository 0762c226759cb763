package ssrp

import (
	"encoding/binary"
	"unicode/utf8"
)

// ServerResponse is a decoded SVR_RESP datagram.
//
// Data aliases the buffer passed to ParseServerResponse. It is only valid
// while that buffer is left untouched; use Clone before reusing the buffer.
type ServerResponse struct {
	Data []byte
}

// ParseServerResponse validates one received datagram and returns a view of
// its text payload. Bytes past the declared length are ignored.
func ParseServerResponse(b []byte) (ServerResponse, error) {
	if len(b) < HeaderLen {
		return ServerResponse{}, ErrTruncatedHeader
	}
	if tag := Tag(b[0]); tag != TagServerResponse {
		return ServerResponse{}, &UnexpectedTagError{Tag: tag}
	}
	n := int(binary.LittleEndian.Uint16(b[1:HeaderLen]))
	if n > len(b)-HeaderLen {
		return ServerResponse{}, ErrTruncatedPayload
	}
	payload := b[HeaderLen : HeaderLen+n : HeaderLen+n]
	if !utf8.Valid(payload) {
		return ServerResponse{}, ErrInvalidEncoding
	}
	return ServerResponse{Data: payload}, nil
}

// Text returns the payload as a string.
func (r ServerResponse) Text() string {
	return string(r.Data)
}

// Len returns the payload length in bytes.
func (r ServerResponse) Len() int {
	return len(r.Data)
}

// Clone returns a response that owns its payload.
func (r ServerResponse) Clone() ServerResponse {
	if r.Data == nil {
		return ServerResponse{}
	}
	buf := make([]byte, len(r.Data))
	copy(buf, r.Data)
	return ServerResponse{Data: buf}
}

// AppendServerResponse appends an SVR_RESP datagram carrying text to dst.
// It is the inverse of ParseServerResponse and is used by test browsers and
// fixtures; text longer than the u16 length field is rejected.
func AppendServerResponse(dst []byte, text string) ([]byte, error) {
	if len(text) > int(^uint16(0)) {
		return nil, ErrPayloadTooLarge
	}
	var head [HeaderLen]byte
	head[0] = byte(TagServerResponse)
	binary.LittleEndian.PutUint16(head[1:], uint16(len(text)))
	dst = append(dst, head[:]...)
	return append(dst, text...), nil
}
