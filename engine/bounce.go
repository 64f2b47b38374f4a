package engine

import "fmt"

// Bounce renders the engine offline: it runs ticks logic ticks and, after
// each, renders the frames that fall into that tick at tickRate ticks per
// second. Tick i ends at frame (i+1)*SampleRate/tickRate, so the tempo is
// exact even when the rates do not divide. Afterwards it keeps rendering, up
// to tailFrames more frames, until the last sound, playing or queued, has
// ended. Bounce plays both the logic and the audio goroutine, so neither seq
// nor mixer may be in use elsewhere meanwhile.
func Bounce(seq *Sequencer, mixer *Mixer, tickRate, ticks, tailFrames int) ([]float32, error) {
	format := mixer.Format()
	if tickRate <= 0 || tickRate > format.SampleRate {
		return nil, fmt.Errorf("tick rate should be in [1, %d], got %d", format.SampleRate, tickRate)
	}
	if ticks < 0 || tailFrames < 0 {
		return nil, fmt.Errorf("ticks (%d) and tail frames (%d) should not be negative", ticks, tailFrames)
	}
	// tickEnd is the frame at which tick i ends
	tickEnd := func(i int) int {
		return int(int64(i+1) * int64(format.SampleRate) / int64(tickRate))
	}
	total := tickEnd(ticks - 1)
	buffer := make([]float32, format.Samples(total), format.Samples(total+tailFrames))
	start := 0
	for i := 0; i < ticks; i++ {
		seq.Tick()
		end := tickEnd(i)
		mixer.Render(buffer[format.Samples(start):format.Samples(end)])
		start = end
	}
	limit := total + tailFrames
	for i := ticks; start < limit && mixer.pending(); i++ {
		end := min(tickEnd(i), limit)
		buffer = buffer[:format.Samples(end)]
		mixer.Render(buffer[format.Samples(start):])
		start = end
	}
	return buffer, nil
}
