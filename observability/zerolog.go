package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologObserver emits events through a zerolog.Logger. The event type
// becomes the message, the source and Data keys become fields. Useful when
// the embedding program already logs through zerolog, or wants zerolog's
// console writer for development output.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver creates a ZerologObserver that emits to the given logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

func (o *ZerologObserver) OnEvent(ctx context.Context, event Event) {
	e := o.logger.WithLevel(zerologLevel(event.Level)).
		Str("source", event.Source)
	for k, v := range event.Data {
		e = e.Interface(k, v)
	}
	e.Msg(string(event.Type))
}

func zerologLevel(l Level) zerolog.Level {
	switch {
	case l <= 8:
		return zerolog.DebugLevel
	case l <= 12:
		return zerolog.InfoLevel
	case l <= 16:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
