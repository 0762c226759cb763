package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/danmuck/ssrpctl/internal/config"
	"github.com/danmuck/ssrpctl/internal/protocol/instance"
	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
	"github.com/danmuck/ssrpctl/internal/resolver"
	"github.com/danmuck/ssrpctl/internal/transport"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// query is one browser and what to ask it.
type query struct {
	Name      string
	Host      string
	Port      int
	Instances []string
	Browse    bool
}

// report collects the answers from one browser.
type report struct {
	Target  string
	Records []instance.Record
	Raw     []string
}

func resolveTarget(ctx context.Context, cfg config.ClientConfig, q query, raw bool, logger zerolog.Logger) (*report, error) {
	conn, err := transport.DialUDP(q.Host, q.Port, cfg.Transport)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	res := resolver.New(transport.NewBreakerConn(conn, cfg.Transport.Breaker), cfg.Resolver, logger)
	rep := &report{Target: conn.Target()}
	if q.Name != "" {
		rep.Target = q.Name + " (" + conn.Target() + ")"
	}

	if raw {
		return rep, rawTarget(ctx, res, q, rep, conn.Target())
	}

	if q.Browse {
		records, err := res.Browse(ctx)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", conn.Target(), err)
		}
		rep.Records = append(rep.Records, records...)
	}
	var errs []error
	for _, name := range q.Instances {
		rec, err := res.Lookup(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", conn.Target(), name, err))
			continue
		}
		rep.Records = append(rep.Records, rec)
	}
	return rep, errors.Join(errs...)
}

// rawTarget keeps payload text exactly as decoded, without tokenizing it.
func rawTarget(ctx context.Context, res *resolver.Resolver, q query, rep *report, target string) error {
	var errs []error
	if q.Browse {
		resp, err := res.Raw(ctx, ssrp.BrowseAllRequest())
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		rep.Raw = append(rep.Raw, resp.Text())
	}
	for _, name := range q.Instances {
		resp, err := res.Raw(ctx, ssrp.InstanceRequest(name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", target, name, err))
			continue
		}
		rep.Raw = append(rep.Raw, resp.Text())
	}
	return errors.Join(errs...)
}

// sweep queries every target concurrently and prints reports in file order.
func sweep(ctx context.Context, cfg config.ClientConfig, targets config.TargetsConfig, out io.Writer, raw bool, logger zerolog.Logger) error {
	reports := make([]*report, len(targets.Targets))
	errs := make([]error, len(targets.Targets))

	var g errgroup.Group
	g.SetLimit(8)
	for i, t := range targets.Targets {
		g.Go(func() error {
			q := query{Name: t.Name, Host: t.Host, Port: t.Port, Instances: t.Instances, Browse: t.Browse}
			reports[i], errs[i] = resolveTarget(ctx, cfg, q, raw, logger.With().Str("target", t.Name).Logger())
			return nil
		})
	}
	_ = g.Wait()

	for _, rep := range reports {
		if rep != nil {
			printReport(out, rep, raw)
		}
	}
	return errors.Join(errs...)
}

func printReport(out io.Writer, rep *report, raw bool) {
	fmt.Fprintf(out, "# %s\n", rep.Target)
	if raw {
		for _, line := range rep.Raw {
			fmt.Fprintln(out, line)
		}
		return
	}
	for _, rec := range rep.Records {
		pairs := append([]instance.Pair(nil), rec.Pairs...)
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		for _, p := range pairs {
			fmt.Fprintf(out, "%s=%s\n", p.Key, p.Value)
		}
		fmt.Fprintln(out)
	}
}
