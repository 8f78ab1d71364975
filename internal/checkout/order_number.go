package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const orderNumberSequence = "order_number"

// NumberGenerator hands out human-facing order numbers.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

type sequencer interface {
	DailySequence(ctx context.Context, name string, day time.Time) (int64, error)
}

// SequenceNumbers formats <prefix>-<yyyymmdd>-<6 digit daily sequence>.
type SequenceNumbers struct {
	seq    sequencer
	prefix string
	now    func() time.Time
}

// NewSequenceNumbers builds a generator on top of a daily counter. The prefix
// is upper-cased because tracking lookups upper-case what the customer types.
func NewSequenceNumbers(seq sequencer, prefix string) *SequenceNumbers {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "ORD"
	}
	return &SequenceNumbers{seq: seq, prefix: prefix, now: time.Now}
}

func (g *SequenceNumbers) Next(ctx context.Context) (string, error) {
	day := g.now().UTC()
	n, err := g.seq.DailySequence(ctx, orderNumberSequence, day)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d", g.prefix, day.Format("20060102"), n%1000000), nil
}
