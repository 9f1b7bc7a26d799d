package audio

import (
	"encoding/binary"

	"github.com/ebitengine/oto/v3"
)

// RenderFunc pulls the next n frames of stereo audio. The caller (Output's
// read loop) drives the real-time clock; engine's renderBlock implements
// this signature, advancing its scheduler.Transport over each block so that
// pattern events are scheduled strictly ahead of the samples that carry them.
type RenderFunc func(frames int) (left, right []float64)

// Output is the real-time stereo audio sink: an oto context/player pulling
// PCM from a RenderFunc on oto's own callback goroutine.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	render RenderFunc
	running bool
}

// NewOutput opens the system audio device at sampleRate and starts pulling
// frames from render.
func NewOutput(sampleRate int, render RenderFunc) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	out := &Output{ctx: ctx, render: render, running: true}
	out.player = ctx.NewPlayer(&stereoStream{out: out})
	out.player.SetBufferSize(sampleRate / 10 * 4) // 100ms buffer: bytes, 4 per stereo 16-bit frame
	out.player.Play()
	return out, nil
}

// Close stops pulling audio and releases the output device.
func (o *Output) Close() {
	o.running = false
	if o.player != nil {
		o.player.Close()
	}
}

// stereoStream implements io.Reader over an Output's RenderFunc, converting
// float64 stereo frames to interleaved signed 16-bit little-endian PCM.
type stereoStream struct {
	out *Output
}

func (s *stereoStream) Read(buf []byte) (int, error) {
	if !s.out.running {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	frames := len(buf) / 4 // stereo, 2 bytes/sample
	left, right := s.out.render(frames)

	n := frames
	if len(left) < n {
		n = len(left)
	}
	for i := 0; i < n; i++ {
		l := clampSample(left[i])
		r := clampSample(right[i])
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(int16(l*32767)))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(int16(r*32767)))
	}
	return n * 4, nil
}

func clampSample(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
