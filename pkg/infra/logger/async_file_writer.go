package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AsyncFileWriter buffers log writes off the caller's goroutine so the
// decision path never stalls on disk.
type AsyncFileWriter struct {
	writer  *bufio.Writer
	file    *os.File
	mu      sync.Mutex
	logChan chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	safeLogFile := filepath.Clean(logFile)
	file, err := os.OpenFile(safeLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	aw := &AsyncFileWriter{
		writer:  bufio.NewWriterSize(file, bufferSize),
		file:    file,
		logChan: make(chan []byte, 1000),
		done:    make(chan struct{}),
	}

	aw.wg.Add(1)
	go aw.processWrites()

	return aw, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	entry := make([]byte, len(p))
	copy(entry, p)

	select {
	case w.logChan <- entry:
	default:
		// Buffer full; drop rather than block the caller.
	}

	return len(p), nil
}

func (w *AsyncFileWriter) processWrites() {
	defer w.wg.Done()

	flushTicker := time.NewTicker(time.Second)
	defer flushTicker.Stop()

	for {
		select {
		case entry := <-w.logChan:
			w.mu.Lock()
			_, _ = w.writer.Write(entry)
			w.mu.Unlock()
		case <-flushTicker.C:
			w.mu.Lock()
			_ = w.writer.Flush()
			w.mu.Unlock()
		case <-w.done:
			w.mu.Lock()
			for len(w.logChan) > 0 {
				_, _ = w.writer.Write(<-w.logChan)
			}
			_ = w.writer.Flush()
			w.mu.Unlock()
			return
		}
	}
}

func (w *AsyncFileWriter) Close() error {
	close(w.done)
	w.wg.Wait()
	return w.file.Close()
}
