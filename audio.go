package gridseq

type (
	// Format describes the layout of the audio buffers passed around: all
	// buffers are interleaved float32 samples, so a buffer of n frames has
	// n*Channels samples.
	Format struct {
		SampleRate int
		Channels   int
	}

	// AudioSource is a readable stream of interleaved float32 frames.
	// ReadAudio fills at most len(buffer)/Channels frames and returns the
	// number of frames written. Returning fewer frames than requested, or a
	// non-nil error (io.EOF included), means the stream has ended; it is not
	// read again after that.
	AudioSource interface {
		ReadAudio(buffer []float32) (frames int, err error)
	}

	// SourceFactory opens fresh, start-positioned AudioSources. Every call to
	// Open returns an independent stream; streams never share a read
	// position.
	SourceFactory interface {
		Open() (AudioSource, error)
	}

	// Registry maps a row of the grid to the sound it triggers.
	Registry interface {
		Sound(row int) (SourceFactory, error)
	}

	// RegistryFunc adapts an ordinary function into a Registry.
	RegistryFunc func(row int) (SourceFactory, error)
)

// DefaultFormat is CD quality stereo, what most output devices accept.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2}

// Sound calls f(row).
func (f RegistryFunc) Sound(row int) (SourceFactory, error) {
	return f(row)
}

// Frames returns the number of whole frames in a buffer of this format.
func (f Format) Frames(buffer []float32) int {
	if f.Channels <= 0 {
		return 0
	}
	return len(buffer) / f.Channels
}

// Samples returns the number of interleaved samples n frames take.
func (f Format) Samples(frames int) int {
	return frames * f.Channels
}

// Renderer is implemented by the render path; output drivers call Render
// whenever the device needs more audio. Render must fill the whole buffer
// and must not block.
type Renderer interface {
	Render(buffer []float32)
}
