package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"

	"github.com/notevox/notevox/tts"
)

// runPlain speaks the session without the interactive player, printing
// one line per chunk as it starts. With --watch it keeps running and
// re-reads the file whenever it changes.
func runPlain(ctrl *tts.Controller, path string) error {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var watcher *fsnotify.Watcher
	if watchMode {
		var err error
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("error creating fsnotify watcher: %w", err)
		}
		defer watcher.Close() //nolint:errcheck

		// Watch the directory, not the file: editors replace files on
		// save and the inode-level watch would go stale.
		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
		}
		log.Info("watching for changes", "file", path)
	}

	for {
		select {
		case e := <-ctrl.Events():
			printEvent(ctrl, e, width)
			if e.Kind == tts.EventChunkFailed {
				// There is no retry key here, so move past a chunk that
				// stalls the playhead.
				snap := ctrl.Snapshot()
				if snap.Waiting && e.Index == snap.Current {
					log.Warn("skipping failed chunk", "chunk", e.Index+1)
					_ = ctrl.Skip()
				}
			}
			if e.Kind == tts.EventStateChanged && e.State == tts.StateStopped && !watchMode {
				return nil
			}

		case <-sig:
			return nil

		case event := <-watcherEvents(watcher):
			if event.Name != path && filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire bursts of events on save; let the write settle.
			time.Sleep(50 * time.Millisecond)
			b, err := os.ReadFile(path)
			if err != nil {
				log.Warn("unable to re-read file", "file", path, "error", err)
				continue
			}
			fmt.Println()
			log.Info("file changed, restarting playback", "file", path)
			ctrl.SetText(speakableText(path, string(b)))

		case err := <-watcherErrors(watcher):
			log.Debug("fsnotify error", "error", err)
		}
	}
}

func printEvent(ctrl *tts.Controller, e tts.Event, width int) {
	snap := ctrl.Snapshot()
	switch e.Kind {
	case tts.EventChunkStarted:
		text := ""
		if e.Index < len(snap.Chunks) {
			text = snap.Chunks[e.Index].Text
		}
		line := fmt.Sprintf("[%d/%d] %s", e.Index+1, snap.Total, text)
		fmt.Println(truncate.StringWithTail(line, uint(max(width, 16)), "…"))
	case tts.EventChunkFailed:
		log.Error("chunk failed", "chunk", e.Index+1, "error", e.Err)
	case tts.EventStateChanged:
		log.Debug("state changed", "state", e.State)
	}
}

// watcherEvents returns a nil channel when watching is off, so the
// select arm never fires.
func watcherEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func watcherErrors(w *fsnotify.Watcher) chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}

func logStats(ctrl *tts.Controller) {
	snap := ctrl.Snapshot()
	if snap.SynthesizedBytes == 0 {
		return
	}
	log.Debug("session stats",
		"chunks", snap.Total,
		"audio", humanize.Bytes(uint64(snap.SynthesizedBytes)),
		"voice", snap.Voice,
	)
}
