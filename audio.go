package main

import (
	"fmt"
	"math"

	"github.com/MrPolymorph/Chiper/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100

	// keep about 50ms of tone queued while the sound timer runs
	queueTarget = sampleRate / 20
)

// Audio plays the CHIP-8 tone as a square wave on an SDL audio device.
type Audio struct {
	logger *log.Logger
	device sdl.AudioDeviceID

	period []byte // one period of the square wave
	on     bool
}

// NewAudio opens the default audio device. SDL audio must be initialized.
func NewAudio(logger *log.Logger, opts options.Emulator) (*Audio, error) {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  512,
	}

	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	// start the device, it plays silence while nothing is queued
	sdl.PauseAudioDevice(device, false)

	return &Audio{
		logger: logger,
		device: device,
		period: squareWave(sampleRate, opts.Tone, opts.Volume),
	}, nil
}

// Beep starts or stops the tone.
func (a *Audio) Beep(on bool) {
	a.on = on
	if !on {
		sdl.ClearQueuedAudio(a.device)
		return
	}
	a.fill()
}

// Refill tops up the queued tone while it is playing. It is called once per
// frame.
func (a *Audio) Refill() {
	if a.on {
		a.fill()
	}
}

func (a *Audio) fill() {
	for sdl.GetQueuedAudioSize(a.device) < queueTarget {
		if err := sdl.QueueAudio(a.device, a.period); err != nil {
			a.logger.Error("Queueing audio failed", log.Err(err))
			return
		}
	}
}

// Close stops and releases the audio device.
func (a *Audio) Close() {
	sdl.CloseAudioDevice(a.device)
}

// squareWave returns one period of a signed 8-bit square wave.
func squareWave(rate, tone int, volume float64) []byte {
	n := max(rate/tone, 2)
	amplitude := int8(math.Round(volume * math.MaxInt8))

	period := make([]byte, n)
	for i := range period {
		sample := amplitude
		if i >= n/2 {
			sample = -amplitude
		}
		period[i] = byte(sample)
	}
	return period
}
