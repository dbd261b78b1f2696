/*
Cyberdeck Core
Copyright (c) 2026 The Cyberdeck Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Cyberdeck Core.

Cyberdeck Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Cyberdeck Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package audio decodes and plays audio files through the default ALSA
// device using malgo. Playback is blocking: meditation sessions play
// tracks in sequence and need to know when each one finishes.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"
)

const (
	// playbackRate is the fixed output sample rate. The Pi's HDMI and
	// headphone paths both accept 48 kHz, so everything is resampled to it.
	playbackRate    = beep.SampleRate(48000)
	resampleQuality = 4
)

// Player is the interface for audio playback, allowing tests to substitute
// sound output.
type Player interface {
	// Play plays one file to completion. It blocks until the track ends or
	// ctx is cancelled, in which case it returns the context's error.
	Play(ctx context.Context, path string) error
	// PlayLoop plays a file on repeat until ctx is cancelled.
	PlayLoop(ctx context.Context, path string) error
	// Probe returns the play length of a file without playing it.
	Probe(path string) (time.Duration, error)
}

// MalgoPlayer implements Player against real audio hardware. Only one
// stream plays at a time; concurrent calls block until the device is free.
type MalgoPlayer struct {
	playbackMu syncutil.Mutex
}

// NewMalgoPlayer creates a new MalgoPlayer instance.
func NewMalgoPlayer() *MalgoPlayer {
	return &MalgoPlayer{}
}

// SupportedFile reports whether path has a playable audio extension.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".ogg", ".flac":
		return true
	default:
		return false
	}
}

// decodeFile opens path and picks a decoder by extension. Meditation tracks
// run long, so the file is streamed rather than read into memory. The
// returned file must be closed via closeStream once the streamer is done.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, *os.File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedFile(path) {
		return nil, beep.Format{}, nil,
			fmt.Errorf("unsupported audio format: %s (supported: .wav, .mp3, .ogg, .flac)", ext)
	}

	//nolint:gosec // G304: callers are responsible for path sanitization
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close audio file on decode error")
		}
		return nil, beep.Format{}, nil, fmt.Errorf("failed to decode audio file: %w", err)
	}

	return streamer, format, f, nil
}

// closeStream closes a decoded streamer and its backing file. The mp3 and
// vorbis decoders close the file through the streamer, so the second close
// commonly reports the file as already closed and is ignored.
func closeStream(streamer beep.StreamSeekCloser, f *os.File) {
	if err := streamer.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close audio streamer")
	}
	_ = f.Close()
}

// Probe decodes just enough of a file to report its play length.
func (p *MalgoPlayer) Probe(path string) (time.Duration, error) {
	streamer, format, f, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	defer closeStream(streamer, f)
	return format.SampleRate.D(streamer.Len()), nil
}

// Play plays one file to completion, blocking until the track ends or ctx
// is cancelled.
func (p *MalgoPlayer) Play(ctx context.Context, path string) error {
	streamer, format, f, err := decodeFile(path)
	if err != nil {
		return err
	}
	defer closeStream(streamer, f)

	resampled := beep.Resample(resampleQuality, format.SampleRate, playbackRate, streamer)

	p.playbackMu.Lock()
	defer p.playbackMu.Unlock()

	log.Debug().Str("path", path).Msg("starting audio playback")
	err = playStream(ctx, resampled)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to play %s: %w", filepath.Base(path), err)
	}
	if err == nil {
		log.Debug().Str("path", path).Msg("completed audio playback")
	}
	return err
}

// PlayLoop plays a file on repeat until ctx is cancelled. Used for the
// session alarm, which rings until dismissed.
func (p *MalgoPlayer) PlayLoop(ctx context.Context, path string) error {
	streamer, format, f, err := decodeFile(path)
	if err != nil {
		return err
	}
	defer closeStream(streamer, f)

	looped := &loopStreamer{s: streamer}
	resampled := beep.Resample(resampleQuality, format.SampleRate, playbackRate, looped)

	p.playbackMu.Lock()
	defer p.playbackMu.Unlock()

	log.Debug().Str("path", path).Msg("starting looped audio playback")
	err = playStream(ctx, resampled)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to loop %s: %w", filepath.Base(path), err)
	}
	if err == nil && looped.err != nil {
		return fmt.Errorf("failed to loop %s: %w", filepath.Base(path), looped.err)
	}
	return err
}

// loopStreamer restarts its source from the top each time it drains.
type loopStreamer struct {
	s   beep.StreamSeekCloser
	err error
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	if l.err != nil {
		return 0, false
	}

	filled := 0
	restarts := 0
	for filled < len(samples) {
		n, ok := l.s.Stream(samples[filled:])
		filled += n
		if n > 0 {
			restarts = 0
		}
		if ok {
			continue
		}
		if err := l.s.Err(); err != nil {
			l.err = err
			break
		}
		// Source drained without error: rewind and keep going. A source
		// that yields nothing twice in a row is empty, stop instead of
		// spinning in the device callback.
		restarts++
		if restarts > 1 {
			break
		}
		if err := l.s.Seek(0); err != nil {
			l.err = fmt.Errorf("failed to rewind audio stream: %w", err)
			break
		}
	}

	return filled, filled > 0
}

func (l *loopStreamer) Err() error { return l.err }

// playStream plays samples through malgo, blocking until the streamer
// drains or ctx is cancelled.
func playStream(ctx context.Context, streamer beep.Streamer) error {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	if malgoCtx == nil {
		return errors.New("malgo context is nil after initialization")
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	// F32 format avoids buggy S16->S32 conversion in miniaudio on PulseAudio
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(playbackRate)
	deviceConfig.Alsa.NoMMap = 1

	done := make(chan struct{})

	var (
		mu       syncutil.Mutex
		finished bool
		samples  [][2]float64
	)

	onSamples := func(pOutputSample, _ []byte, frameCount uint32) {
		mu.Lock()
		defer mu.Unlock()

		if finished {
			return
		}

		select {
		case <-ctx.Done():
			finished = true
			close(done)
			return
		default:
		}

		if len(samples) < int(frameCount) {
			samples = make([][2]float64, frameCount)
		}

		n, ok := streamer.Stream(samples[:frameCount])
		if !ok || n == 0 {
			finished = true
			close(done)
			return
		}

		// Convert beep's [][2]float64 samples to interleaved F32 PCM
		offset := 0
		for i := range n {
			sample := float32(samples[i][0])
			binary.LittleEndian.PutUint32(pOutputSample[offset:], math.Float32bits(sample))
			offset += 4

			sample = float32(samples[i][1])
			binary.LittleEndian.PutUint32(pOutputSample[offset:], math.Float32bits(sample))
			offset += 4
		}

		for i := offset; i < len(pOutputSample); i++ {
			pOutputSample[i] = 0
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		if !finished {
			finished = true
		}
		mu.Unlock()
	}

	if err := device.Stop(); err != nil {
		log.Warn().Err(err).Msg("failed to stop audio device")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}
