package session

// chunkQueue links in to the returned channel through an unbounded FIFO
// buffer, so a slow consumer never blocks the producer. Each key event's
// translated bytes travel as one chunk and are delivered in enqueue order.
// The returned channel closes after in is closed and the buffer drains, or
// as soon as done closes; done lets the queue abandon buffered chunks when
// the consumer is already gone.
func chunkQueue(done <-chan struct{}, in <-chan []byte) <-chan []byte {
	out := make(chan []byte)

	go func() {
		defer close(out)

		var buf [][]byte
		for {
			if len(buf) == 0 {
				select {
				case chunk, ok := <-in:
					if !ok {
						return
					}
					buf = append(buf, chunk)
				case <-done:
					return
				}
			}

			select {
			case chunk, ok := <-in:
				if !ok {
					// Drain what is left, unless the consumer is gone.
					for _, c := range buf {
						select {
						case out <- c:
						case <-done:
							return
						}
					}
					return
				}
				buf = append(buf, chunk)
			case out <- buf[0]:
				buf = buf[1:]
			case <-done:
				return
			}
		}
	}()

	return out
}
