package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sysdvr/internal/bridge"
)

// bridge receives the raw TCP streams of a console.
func (a *app) bridge(ctx context.Context, host string) error {
	var kinds []bridge.Kind
	if !a.cfg.NoVideo {
		kinds = append(kinds, bridge.Video)
	}
	if !a.cfg.NoAudio {
		kinds = append(kinds, bridge.Audio)
	}
	if a.cfg.OutputDir == "" && len(kinds) > 1 {
		return fmt.Errorf("both streams cannot share stdout\n" +
			"  hint: pass --output-dir, --no-audio or --no-video")
	}

	outputs := make(map[bridge.Kind]io.Writer, len(kinds))
	for _, k := range kinds {
		if a.cfg.OutputDir == "" {
			outputs[k] = a.stdout
			continue
		}
		f, err := os.Create(filepath.Join(a.cfg.OutputDir, streamFile(k)))
		if err != nil {
			return fmt.Errorf("bridge output: %w", err)
		}
		defer f.Close()
		outputs[k] = f
	}

	if a.cfg.DryRun {
		return nil
	}

	sink := bridge.SinkFunc(func(k bridge.Kind, p bridge.Packet) error {
		_, err := outputs[k].Write(p.Data)
		return err
	})

	eg, gctx := errgroup.WithContext(ctx)
	for _, k := range kinds {
		c := &bridge.Client{
			Host:    host,
			Kind:    k,
			Port:    a.port(k),
			Timeout: a.timeout(),
			Backoff: a.cfg.Backoff(),
			Logger:  a.logger.Named(k.String()),
		}
		eg.Go(func() error { return c.Run(gctx, sink) })
	}
	if err := eg.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (a *app) port(k bridge.Kind) int {
	if k == bridge.Audio {
		return a.cfg.AudioPort
	}
	return a.cfg.VideoPort
}

func streamFile(k bridge.Kind) string {
	if k == bridge.Audio {
		return "audio.pcm"
	}
	return "video.h264"
}
