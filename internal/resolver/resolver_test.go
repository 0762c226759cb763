package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/ssrpctl/internal/protocol/instance"
	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/danmuck/ssrpctl/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

const (
	expressRecord = "ServerName;DB01;InstanceName;SQLEXPRESS;IsClustered;No;Version;15.0.2000.5;tcp;52311;;"
	devRecord     = "ServerName;DB01;InstanceName;DEV;IsClustered;No;Version;16.0.1000.6;tcp;1433;;"
)

// fakeBrowser answers requests in-process the way a browser service would.
type fakeBrowser struct {
	mu        sync.Mutex
	calls     int
	lastReq   []byte
	instances map[string]string
	reply     []byte
	err       error
}

func (f *fakeBrowser) Exchange(_ context.Context, request []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = append([]byte(nil), request...)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	var text string
	switch ssrp.Tag(request[0]) {
	case ssrp.TagClientUnicastEx:
		text = expressRecord + devRecord
	case ssrp.TagClientUnicastInst:
		text = f.instances[strings.ToUpper(string(request[1 : len(request)-1]))]
	}
	return ssrp.AppendServerResponse(nil, text)
}

func (f *fakeBrowser) Target() string { return "db01:1434" }
func (f *fakeBrowser) Close() error   { return nil }

func newFake() *fakeBrowser {
	return &fakeBrowser{instances: map[string]string{"SQLEXPRESS": expressRecord, "DEV": devRecord}}
}

func TestLookup(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	r := New(fake, DefaultConfig(), zerolog.Nop())

	rec, err := r.Lookup(context.Background(), "SQLEXPRESS")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	port, ok, err := rec.TCPPort()
	if err != nil || !ok || port != 52311 {
		t.Fatalf("unexpected port: %d ok=%v err=%v", port, ok, err)
	}
	if string(fake.lastReq) != "\x04SQLEXPRESS\x00" {
		t.Fatalf("unexpected request %q", fake.lastReq)
	}
}

func TestLookupUsesCache(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	r := New(fake, DefaultConfig(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := r.Lookup(context.Background(), "dev"); err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}
	if fake.calls != 1 {
		t.Fatalf("expected one exchange, got %d", fake.calls)
	}
	r.Purge()
	if _, err := r.Lookup(context.Background(), "DEV"); err != nil {
		t.Fatalf("lookup after purge: %v", err)
	}
	if fake.calls != 2 {
		t.Fatalf("expected purge to force an exchange, got %d", fake.calls)
	}
}

func TestLookupCacheDisabled(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	r := New(fake, Config{CacheSize: 8}, zerolog.Nop())
	for i := 0; i < 2; i++ {
		if _, err := r.Lookup(context.Background(), "DEV"); err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if fake.calls != 2 {
		t.Fatalf("expected two exchanges, got %d", fake.calls)
	}
}

func TestLookupEmptyPayload(t *testing.T) {
	testlog.Start(t)
	r := New(newFake(), DefaultConfig(), zerolog.Nop())
	_, err := r.Lookup(context.Background(), "MISSING")
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestLookupUnexpectedTag(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	fake.reply = []byte{0x04, 0x00, 0x00}
	r := New(fake, DefaultConfig(), zerolog.Nop())
	_, err := r.Lookup(context.Background(), "DEV")
	if !errors.Is(err, ssrp.ErrUnexpectedMessageTag) {
		t.Fatalf("expected ErrUnexpectedMessageTag, got %v", err)
	}
}

func TestLookupTransportError(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	fake.err = context.DeadlineExceeded
	r := New(fake, DefaultConfig(), zerolog.Nop())
	_, err := r.Lookup(context.Background(), "DEV")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestBrowse(t *testing.T) {
	testlog.Start(t)
	r := New(newFake(), DefaultConfig(), zerolog.Nop())
	records, err := r.Browse(context.Background())
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if _, ok := instance.FindInstance(records, "DEV"); !ok {
		t.Fatalf("missing DEV in %+v", records)
	}
}

func TestBrowseMissingRequiredKey(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	fake.reply, _ = ssrp.AppendServerResponse(nil, "ServerName;DB01;;")
	r := New(fake, DefaultConfig(), zerolog.Nop())
	_, err := r.Browse(context.Background())
	var missing instance.MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
}

func TestRawIsUncached(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	r := New(fake, Config{CacheSize: 8, CacheTTL: time.Minute}, zerolog.Nop())
	for i := 0; i < 2; i++ {
		resp, err := r.Raw(context.Background(), ssrp.BrowseAllRequest())
		if err != nil {
			t.Fatalf("raw: %v", err)
		}
		if resp.Text() != expressRecord+devRecord {
			t.Fatalf("unexpected payload %q", resp.Text())
		}
	}
	if fake.calls != 2 {
		t.Fatalf("expected two exchanges, got %d", fake.calls)
	}
}

func TestLookupSingleRecordAlias(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	fake.reply, _ = ssrp.AppendServerResponse(nil, devRecord)
	r := New(fake, DefaultConfig(), zerolog.Nop())
	rec, err := r.Lookup(context.Background(), "DEV_ALIAS")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.InstanceName() != "DEV" {
		t.Fatalf("unexpected record %q", rec.InstanceName())
	}
}

func TestLookupNoMatchAmongSeveralRecords(t *testing.T) {
	testlog.Start(t)
	fake := newFake()
	fake.reply, _ = ssrp.AppendServerResponse(nil, expressRecord+devRecord)
	r := New(fake, DefaultConfig(), zerolog.Nop())
	_, err := r.Lookup(context.Background(), "REPORTING")
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
}
