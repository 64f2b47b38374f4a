package samples

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/config"
	"github.com/vsariola/gridseq/logger"
)

// Bank is the sound registry of a kit: one optional Sample per row. It is
// filled before playback starts and only read afterwards.
type Bank struct {
	format  gridseq.Format
	samples []*Sample
}

// toneDuration is the length of the placeholder click of tone rows.
const toneDuration = 0.25

// NewBank creates a bank with rows empty rows, for samples in format.
func NewBank(format gridseq.Format, rows int) *Bank {
	return &Bank{format: format, samples: make([]*Sample, rows)}
}

// LoadBank decodes the sounds of every row of the kit. A row whose file
// cannot be loaded is logged and left empty; triggering it later reports
// gridseq.ErrSourceUnavailable instead of stopping the whole kit.
func LoadBank(cfg *config.Config) *Bank {
	log := logger.GetProjectLogger()
	format := cfg.Format()
	b := NewBank(format, len(cfg.Rows))
	for i, row := range cfg.Rows {
		fields := logrus.Fields{"row": i, "sound": row.Name}
		switch {
		case row.Sample != "":
			path := cfg.SamplePath(row)
			s, err := LoadFile(path, format)
			if err != nil {
				log.WithFields(fields).WithField("path", path).Warnf("could not load sample: %v", err)
				continue
			}
			s.Name = row.Name
			b.samples[i] = s
			log.WithFields(fields).WithField("frames", s.Frames()).Debug("sample loaded")
		case row.Tone > 0:
			b.samples[i] = Tone(row.Name, format, row.Tone, toneDuration)
		default:
			log.WithFields(fields).Warn("row has neither a sample nor a tone")
		}
	}
	return b
}

// Set puts a sample on a row; a nil sample empties the row.
func (b *Bank) Set(row int, s *Sample) error {
	if row < 0 || row >= len(b.samples) {
		return fmt.Errorf("row %d of %d: %w", row, len(b.samples), gridseq.ErrOutOfRange)
	}
	if s != nil && s.format != b.format {
		return fmt.Errorf("sample %q is %+v, bank is %+v", s.Name, s.format, b.format)
	}
	b.samples[row] = s
	return nil
}

// Sound implements gridseq.Registry.
func (b *Bank) Sound(row int) (gridseq.SourceFactory, error) {
	if row < 0 || row >= len(b.samples) {
		return nil, fmt.Errorf("row %d of %d: %w", row, len(b.samples), gridseq.ErrSourceUnavailable)
	}
	s := b.samples[row]
	if s == nil {
		return nil, fmt.Errorf("row %d has no sound: %w", row, gridseq.ErrSourceUnavailable)
	}
	return s, nil
}

// Sample returns the sample of a row, or nil.
func (b *Bank) Sample(row int) *Sample {
	if row < 0 || row >= len(b.samples) {
		return nil
	}
	return b.samples[row]
}

// Len returns the number of rows of the bank.
func (b *Bank) Len() int {
	return len(b.samples)
}
