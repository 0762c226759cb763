package ssrp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

const sampleText = "ServerName;HOST01;InstanceName;SQLEXPRESS;IsClustered;No;Version;15.0.2000.5;tcp;1433;;"

func TestInstanceRequestSingleChar(t *testing.T) {
	got := InstanceRequest("A")
	want := []byte{0x04, 0x41, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected request: got=%x want=%x", got, want)
	}
}

func TestInstanceRequestLayout(t *testing.T) {
	for _, name := range []string{"", "SQLEXPRESS", "MSSQL$DEV", "инстанс"} {
		got := InstanceRequest(name)
		if len(got) != len(name)+2 {
			t.Fatalf("%q: unexpected length %d", name, len(got))
		}
		if got[0] != byte(TagClientUnicastInst) {
			t.Fatalf("%q: unexpected tag 0x%02x", name, got[0])
		}
		if string(got[1:len(got)-1]) != name {
			t.Fatalf("%q: unexpected body %q", name, got[1:len(got)-1])
		}
		if got[len(got)-1] != 0x00 {
			t.Fatalf("%q: missing NUL terminator", name)
		}
	}
}

func TestBrowseAllRequest(t *testing.T) {
	got := BrowseAllRequest()
	if !bytes.Equal(got, []byte{0x03}) {
		t.Fatalf("unexpected request: %x", got)
	}
	got[0] = 0xff
	if BrowseAllRequest()[0] != 0x03 {
		t.Fatalf("browse request shares backing storage between calls")
	}
}

func TestParseServerResponseRoundTrip(t *testing.T) {
	for _, text := range []string{"", "a", sampleText, "Name;Zürich;;"} {
		buf, err := AppendServerResponse(nil, text)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		resp, err := ParseServerResponse(buf)
		if err != nil {
			t.Fatalf("%q: parse: %v", text, err)
		}
		if resp.Text() != text {
			t.Fatalf("round-trip mismatch: got=%q want=%q", resp.Text(), text)
		}
	}
}

func TestParseServerResponseSampleDatagram(t *testing.T) {
	text := strings.Repeat("x", 85) + ";;"
	buf := append([]byte{0x05, 0x57, 0x00}, text...)
	if len(buf) != 90 {
		t.Fatalf("fixture length %d", len(buf))
	}
	resp, err := ParseServerResponse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Len() != 87 {
		t.Fatalf("unexpected payload length %d", resp.Len())
	}
	if !strings.HasSuffix(resp.Text(), ";;") {
		t.Fatalf("payload does not end in ;;: %q", resp.Text())
	}
}

func TestParseServerResponseUnexpectedTag(t *testing.T) {
	buf := []byte{0x04, 0xff, 0xff, 0xc3}
	_, err := ParseServerResponse(buf)
	if !errors.Is(err, ErrUnexpectedMessageTag) {
		t.Fatalf("expected ErrUnexpectedMessageTag, got %v", err)
	}
	var tagErr *UnexpectedTagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("expected UnexpectedTagError, got %T", err)
	}
	if tagErr.Tag != TagClientUnicastInst {
		t.Fatalf("unexpected tag in error: %v", tagErr.Tag)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("tag mismatch must not report malformed response")
	}
}

func TestParseServerResponseTruncatedHeader(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, {0x05}, {0x05, 0x01}} {
		_, err := ParseServerResponse(buf)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%x: expected ErrMalformedResponse, got %v", buf, err)
		}
		if !errors.Is(err, ErrTruncatedHeader) {
			t.Fatalf("%x: expected ErrTruncatedHeader, got %v", buf, err)
		}
	}
}

func TestParseServerResponseInflatedLength(t *testing.T) {
	buf := make([]byte, HeaderLen, HeaderLen+4)
	buf[0] = byte(TagServerResponse)
	binary.LittleEndian.PutUint16(buf[1:], 5)
	buf = append(buf, "abcd"...)

	_, err := ParseServerResponse(buf)
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("expected ErrTruncatedPayload, got %v", err)
	}
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseServerResponseIgnoresTrailingBytes(t *testing.T) {
	buf, err := AppendServerResponse(nil, "ab;;")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	buf = append(buf, 0xff, 0xfe)
	resp, err := ParseServerResponse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Text() != "ab;;" {
		t.Fatalf("unexpected text %q", resp.Text())
	}
}

func TestParseServerResponseInvalidUTF8(t *testing.T) {
	buf := []byte{0x05, 0x02, 0x00, 0xc3, 0x28}
	_, err := ParseServerResponse(buf)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestServerResponseBorrowsAndClones(t *testing.T) {
	buf, err := AppendServerResponse(nil, "abc")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	resp, err := ParseServerResponse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	owned := resp.Clone()

	buf[HeaderLen] = 'z'
	if resp.Text() != "zbc" {
		t.Fatalf("expected borrowed view to observe buffer writes, got %q", resp.Text())
	}
	if owned.Text() != "abc" {
		t.Fatalf("expected clone to be independent, got %q", owned.Text())
	}

	// Appending to the view must not clobber bytes after the payload.
	buf = append(buf, '!')
	view := append(resp.Data, '?')
	if buf[len(buf)-1] != '!' || string(view) != "zbc?" {
		t.Fatalf("view capacity leaks into source buffer")
	}
}

func TestAppendServerResponseTooLarge(t *testing.T) {
	_, err := AppendServerResponse(nil, strings.Repeat("a", 1<<16))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestTagString(t *testing.T) {
	if TagServerResponse.String() != "SVR_RESP" || Tag(0x7f).String() != "UNKNOWN" {
		t.Fatalf("unexpected tag names")
	}
}
