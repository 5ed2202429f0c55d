package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/panel"
	"github.com/nguyentantai21042004/call-companion/internal/room"
	"github.com/nguyentantai21042004/call-companion/internal/session"
)

// runHeadless starts listening right away and logs what the panel would show.
func runHeadless(ctx context.Context, log logger.Logger, b session.Bootstrapper, p panel.Panel, opener room.Opener, autoOpen bool) error {
	log.Info(ctx, "Connecting to video session...")
	st := b.Run(ctx)
	if st.Status != session.Ready {
		return errors.New(st.Message)
	}

	if autoOpen {
		if err := opener.Open(ctx, st.RoomURL); err != nil {
			log.Warn(ctx, "Could not open the video room: %v", err)
		}
	} else {
		log.Info(ctx, "Video room: %s", st.RoomURL)
	}

	if err := p.Start(ctx); err != nil {
		if !errors.Is(err, capture.ErrUnsupported) {
			return fmt.Errorf("start listening: %w", err)
		}
		log.Warn(ctx, "Speech recognition not supported, nothing to transcribe")
	}
	log.Info(ctx, "Press Ctrl+C to stop")

	var logged int
	var lastInsights *insight.Insights
	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "Shutting down gracefully...")
			return nil
		case <-p.Changes():
		}

		snap := p.Snapshot()
		for _, e := range snap.Transcript[min(logged, len(snap.Transcript)):] {
			log.Info(ctx, "[%s] %s: %s", e.Timestamp, e.Speaker, e.Text)
		}
		logged = len(snap.Transcript)

		if snap.Insights != nil && snap.Insights != lastInsights {
			lastInsights = snap.Insights
			logInsights(ctx, log, snap.Insights)
		}
		if snap.LastError != nil && snap.Capture == capture.Idle {
			log.Error(ctx, "Listening stopped: %v", snap.LastError)
			return snap.LastError
		}
	}
}

func logInsights(ctx context.Context, log logger.Logger, ins *insight.Insights) {
	log.Info(ctx, "Summary: %s", ins.Summary)
	for _, item := range ins.ActionItems {
		log.Info(ctx, "  Action: %s", item)
	}
	for _, point := range ins.TalkingPoints {
		log.Info(ctx, "  Talk: %s", point)
	}
}
