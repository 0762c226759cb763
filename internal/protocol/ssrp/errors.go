package ssrp

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse    = errors.New("ssrp: malformed response")
	ErrUnexpectedMessageTag = errors.New("ssrp: unexpected message tag")
	ErrInvalidEncoding      = errors.New("ssrp: payload is not valid utf-8")
	ErrPayloadTooLarge      = errors.New("ssrp: payload too large")

	ErrTruncatedHeader  = fmt.Errorf("%w: truncated header", ErrMalformedResponse)
	ErrTruncatedPayload = fmt.Errorf("%w: truncated payload", ErrMalformedResponse)
)

// UnexpectedTagError reports the tag byte found where SVR_RESP was required.
type UnexpectedTagError struct {
	Tag Tag
}

func (e *UnexpectedTagError) Error() string {
	return fmt.Sprintf("ssrp: unexpected message tag 0x%02x (%s)", uint8(e.Tag), e.Tag)
}

func (e *UnexpectedTagError) Is(target error) bool {
	return target == ErrUnexpectedMessageTag
}
