package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"serial-monitor/pkg/dump"
)

// StopReason records why a session loop ended.
type StopReason int

const (
	// ReasonUserExit means the exit key combination was pressed.
	ReasonUserExit StopReason = iota
	// ReasonSerialClosed means the serial side reached end of stream.
	ReasonSerialClosed
	// ReasonSerialError means a serial read or write failed.
	ReasonSerialError
	// ReasonKeyboardClosed means the event source ended cleanly.
	ReasonKeyboardClosed
	// ReasonKeyboardError means the event source failed.
	ReasonKeyboardError
	// ReasonCanceled means the caller's context was canceled.
	ReasonCanceled
)

// String returns a short description for status output.
func (r StopReason) String() string {
	switch r {
	case ReasonUserExit:
		return "exit key pressed"
	case ReasonSerialClosed:
		return "serial connection closed"
	case ReasonSerialError:
		return "serial error"
	case ReasonKeyboardClosed:
		return "input closed"
	case ReasonKeyboardError:
		return "input error"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// EventSource delivers terminal input events. Events returns a channel that
// closes when no more events will arrive; Err reports why, nil meaning a
// clean end of input.
type EventSource interface {
	Events() <-chan Event
	Err() error
}

// readBufSize matches the transfer size of common USB serial bridges.
const readBufSize = 1024

// Loop is the duplex session engine. It drains keyboard events and serial
// reads concurrently: events are translated and queued for the serial writer,
// inbound bytes are decoded and displayed. Neither direction can stall the
// other; a slow serial writer only grows the outgoing queue.
//
// The translator and decoder are touched only from Run's select loop, and the
// outgoing queue has a single producer and single consumer, so the loop needs
// no locks.
type Loop struct {
	cfg        Config
	port       io.ReadWriter
	source     EventSource
	display    io.Writer
	logger     *zap.Logger
	translator *Translator
	decoder    Decoder
}

// NewLoop assembles a session loop. display receives decoded device output
// (and echo when enabled). logger may be nil.
func NewLoop(cfg Config, port io.ReadWriter, source EventSource, display io.Writer, logger *zap.Logger) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if port == nil {
		return nil, errors.New("session: nil port")
	}
	if source == nil {
		return nil, errors.New("session: nil event source")
	}
	if display == nil {
		return nil, errors.New("session: nil display")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loop{
		cfg:        cfg,
		port:       port,
		source:     source,
		display:    display,
		logger:     logger,
		translator: NewTranslator(cfg, display, logger),
	}, nil
}

// Run pumps both directions until the exit key, a transport failure, the end
// of either stream, or context cancellation. It returns the reason the
// session ended and, for the error reasons, the underlying error. Run blocks;
// terminal state management is the caller's concern.
func (l *Loop) Run(ctx context.Context) (StopReason, error) {
	sentinel := l.cfg.ExitSentinel()

	// Closing done tells the pump goroutines to stop reporting; they exit on
	// their next read or write completion.
	done := make(chan struct{})
	defer close(done)

	chunks := make(chan []byte)
	readErrs := make(chan error, 1)
	go l.readSerial(done, chunks, readErrs)

	outgoing := make(chan []byte)
	writeErrs := make(chan error, 1)
	go l.writeSerial(done, chunkQueue(done, outgoing), writeErrs)
	defer close(outgoing)

	events := l.source.Events()

	for {
		select {
		case <-ctx.Done():
			return ReasonCanceled, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				if err := l.source.Err(); err != nil {
					return ReasonKeyboardError, fmt.Errorf("reading input: %w", err)
				}
				return ReasonKeyboardClosed, nil
			}
			if ev.Is(sentinel) {
				return ReasonUserExit, nil
			}
			if seq := l.translator.Translate(ev); seq != nil {
				outgoing <- seq
			}

		case chunk := <-chunks:
			l.forward(chunk)

		case err := <-readErrs:
			if errors.Is(err, io.EOF) {
				// A partial character still pending at end of stream shows
				// up as a replacement character instead of vanishing.
				if text, ok := l.decoder.Flush(); ok {
					io.WriteString(l.display, text)
				}
				return ReasonSerialClosed, nil
			}
			return ReasonSerialError, fmt.Errorf("reading serial port: %w", err)

		case err := <-writeErrs:
			return ReasonSerialError, fmt.Errorf("writing serial port: %w", err)
		}
	}
}

// readSerial pumps serial reads into chunks until an error or done.
func (l *Loop) readSerial(done <-chan struct{}, chunks chan<- []byte, errs chan<- error) {
	for {
		buf := make([]byte, readBufSize)
		n, err := l.port.Read(buf)
		if n > 0 {
			select {
			case chunks <- buf[:n]:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case errs <- err:
			case <-done:
			}
			return
		}
		if n == 0 {
			// Some drivers return 0, nil on closed ports.
			select {
			case errs <- io.EOF:
			case <-done:
			}
			return
		}
	}
}

// writeSerial drains the outgoing queue into the port until an error or done.
func (l *Loop) writeSerial(done <-chan struct{}, queued <-chan []byte, errs chan<- error) {
	for {
		select {
		case chunk, ok := <-queued:
			if !ok {
				return
			}
			if _, err := l.port.Write(chunk); err != nil {
				select {
				case errs <- err:
				case <-done:
				}
				return
			}
		case <-done:
			return
		}
	}
}

// forward decodes an inbound chunk and writes the result to the display. In
// debug trace mode the raw bytes are shown as a hex dump instead.
func (l *Loop) forward(chunk []byte) {
	if l.cfg.DebugTrace {
		l.logger.Debug("serial read", zap.Int("bytes", len(chunk)))
		fmt.Fprintf(l.display, "%s\r\n", dump.String(chunk))
		return
	}

	if text, ok := l.decoder.Decode(chunk); ok {
		io.WriteString(l.display, text)
	}
}
