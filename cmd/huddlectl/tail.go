package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/client"
	"github.com/matheus3301/huddle/internal/workspace"
)

const resyncBackoff = 2 * time.Second

// tail opens a conversation through the synchronizer and prints each message
// once, in view order, as the view grows.
func (a *cli) tail(args []string) {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	resyncOnDrop := fs.Bool("resync-on-drop", false, "resubscribe and catch up when the live feed drops")
	_ = fs.Parse(args)
	needArgs(fs.Args(), 1, "tail [--resync-on-drop] <conversation>")
	convID := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.New()
	events, unsub := b.Subscribe("sync.", 16)
	defer unsub()

	opts := []intsync.Option{}
	if d := workspace.IdentityTimeout(workspace.LoadConfig()); d > 0 {
		opts = append(opts, intsync.WithIdentityTimeout(d))
	}
	s := intsync.New(client.NewRemote(a.c, nil), b, nil, opts...)
	defer s.Close()

	if err := s.Open(ctx, convID); err != nil {
		var fe *intsync.FetchError
		if !errors.As(err, &fe) {
			fatalf("%v", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	var resyncing atomic.Bool
	printed := make(map[string]bool)
	flush := func() {
		for _, m := range s.Messages() {
			if printed[m.ID] {
				continue
			}
			printed[m.ID] = true
			if a.json {
				outputJSON(m)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", formatTime(m.CreatedAt), m.Sender.Name, m.Content)
		}
	}
	flush()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Changes():
			flush()
		case evt := <-events:
			if evt.Kind != bus.KindSyncDegraded {
				continue
			}
			fmt.Fprintf(os.Stderr, "live feed lost: %v\n", evt.Payload)
			if !*resyncOnDrop {
				continue
			}
			go a.resync(ctx, s, &resyncing)
		}
	}
}

// resync retries until the feed is back and the missed tail is fetched.
func (a *cli) resync(ctx context.Context, s *intsync.Synchronizer, running *atomic.Bool) {
	if !running.CompareAndSwap(false, true) {
		return
	}
	defer running.Store(false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(resyncBackoff):
		}
		err := s.Resync(ctx)
		if err == nil {
			fmt.Fprintln(os.Stderr, "live feed restored")
			return
		}
		if errors.Is(err, intsync.ErrNotOpen) || errors.Is(err, intsync.ErrSuperseded) {
			return
		}
		fmt.Fprintf(os.Stderr, "resync failed: %v\n", err)
	}
}
