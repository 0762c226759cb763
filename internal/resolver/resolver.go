// Package resolver answers instance lookups against one SSRP browser.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/ssrpctl/internal/observability"
	"github.com/danmuck/ssrpctl/internal/protocol/instance"
	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/danmuck/ssrpctl/internal/transport"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

var ErrInstanceNotFound = errors.New("resolver: instance not found")

const (
	KindInstance = "instance"
	KindBrowse   = "browse"
)

// Config controls response caching.
type Config struct {
	Host      string
	CacheSize int
	// CacheTTL of zero disables caching.
	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{CacheSize: 128, CacheTTL: 30 * time.Second}
}

// Resolver is safe for concurrent use when its Conn is.
type Resolver struct {
	cfg    Config
	conn   transport.Conn
	cache  *expirable.LRU[string, ssrp.ServerResponse]
	logger zerolog.Logger
}

func New(conn transport.Conn, cfg Config, logger zerolog.Logger) *Resolver {
	r := &Resolver{cfg: cfg, conn: conn, logger: logger.With().Str("target", conn.Target()).Logger()}
	if cfg.CacheTTL > 0 && cfg.CacheSize > 0 {
		r.cache = expirable.NewLRU[string, ssrp.ServerResponse](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	if r.cfg.Host == "" {
		r.cfg.Host = conn.Target()
	}
	return r
}

// Lookup resolves one named instance.
func (r *Resolver) Lookup(ctx context.Context, name string) (instance.Record, error) {
	resp, err := r.exchange(ctx, KindInstance, name, ssrp.InstanceRequest(name))
	if err != nil {
		return instance.Record{}, err
	}
	records, err := r.records(resp)
	if err != nil {
		return instance.Record{}, err
	}
	if rec, ok := instance.FindInstance(records, name); ok {
		return rec, nil
	}
	// A lone record answers for an alias of the requested name. Several
	// records without a match belong to other instances.
	if len(records) != 1 {
		return instance.Record{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
	}
	r.logger.Debug().Str("instance", name).Str("answered", records[0].InstanceName()).Msg("instance name mismatch")
	return records[0], nil
}

// Browse lists every instance the browser reports.
func (r *Resolver) Browse(ctx context.Context) ([]instance.Record, error) {
	resp, err := r.exchange(ctx, KindBrowse, "", ssrp.BrowseAllRequest())
	if err != nil {
		return nil, err
	}
	records, err := r.records(resp)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, instance.ErrNoRecords
	}
	return records, nil
}

// Raw performs one uncached exchange and returns the decoded payload.
func (r *Resolver) Raw(ctx context.Context, request []byte) (ssrp.ServerResponse, error) {
	return r.roundTrip(ctx, kindOf(request), request)
}

// Purge drops every cached response.
func (r *Resolver) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

func (r *Resolver) records(resp ssrp.ServerResponse) ([]instance.Record, error) {
	records, err := instance.ParseRecords(resp.Text())
	if err != nil {
		return nil, err
	}
	schema := instance.DefaultSchema()
	for _, rec := range records {
		unknown, err := instance.Validate(rec, schema)
		if err != nil {
			return nil, err
		}
		if len(unknown) > 0 {
			r.logger.Debug().Str("instance", rec.InstanceName()).Int("unknown_keys", len(unknown)).Msg("record carries unknown keys")
		}
	}
	return records, nil
}

func (r *Resolver) exchange(ctx context.Context, kind, name string, request []byte) (ssrp.ServerResponse, error) {
	key := kind + "/" + strings.ToUpper(name)
	if r.cache != nil {
		if resp, ok := r.cache.Get(key); ok {
			observability.RecordCacheHit(r.cfg.Host, kind)
			r.logger.Debug().Str("kind", kind).Str("instance", name).Msg("cache hit")
			return resp, nil
		}
	}
	resp, err := r.roundTrip(ctx, kind, request)
	if err != nil {
		return ssrp.ServerResponse{}, err
	}
	if r.cache != nil {
		r.cache.Add(key, resp)
	}
	return resp, nil
}

func (r *Resolver) roundTrip(ctx context.Context, kind string, request []byte) (ssrp.ServerResponse, error) {
	start := time.Now()
	reply, err := r.conn.Exchange(ctx, request)
	if err != nil {
		observability.RecordLookup(r.cfg.Host, kind, "transport_error", time.Since(start))
		return ssrp.ServerResponse{}, fmt.Errorf("%s exchange: %w", kind, err)
	}
	resp, err := ssrp.ParseServerResponse(reply)
	if err != nil {
		observability.RecordLookup(r.cfg.Host, kind, "decode_error", time.Since(start))
		r.logger.Debug().Err(err).Str("kind", kind).Int("bytes", len(reply)).Msg("discarding reply")
		return ssrp.ServerResponse{}, fmt.Errorf("%s reply: %w", kind, err)
	}
	observability.RecordLookup(r.cfg.Host, kind, "ok", time.Since(start))
	r.logger.Debug().Str("kind", kind).Int("payload", resp.Len()).Dur("rtt", time.Since(start)).Msg("reply decoded")
	// reply is owned by this call, so resp needs no Clone before caching.
	return resp, nil
}

func kindOf(request []byte) string {
	if len(request) > 0 && ssrp.Tag(request[0]) == ssrp.TagClientUnicastEx {
		return KindBrowse
	}
	return KindInstance
}
