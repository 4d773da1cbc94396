// Package capture owns the camera. A Source pulls frames from the device in
// its own goroutine and keeps only the newest one, so a slow consumer reads
// the current frame instead of a backlog of stale ones.
package capture

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrCameraUnavailable reports that the device or stream could not be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// openTimeout bounds how long Open waits for the device before giving up.
// Network streams can otherwise hang the caller indefinitely.
const openTimeout = 5 * time.Second

// Source supplies the most recent camera frame.
//
// Read returns a copy of the latest frame, which the caller must Close, and
// false while no frame has arrived yet. Read never blocks waiting for the
// camera. Release stops the background reader, waits for it to exit and frees
// the device; it is safe to call once per Source.
type Source interface {
	Read() (gocv.Mat, bool)
	Release() error
}

// Opener opens a Source for a camera source spec. The engine takes an Opener
// so tests can substitute a fake camera.
type Opener func(source string) (Source, error)

// Open resolves source ("0", "1", ... as device indexes, anything else as a
// stream URL) and starts the background frame reader. A device that cannot be
// opened fails fast with ErrCameraUnavailable and leaves no reader running.
func Open(source string) (Source, error) {
	cam, err := openDevice(source)
	if err != nil {
		return nil, err
	}

	s := &stream{
		cam:    cam,
		latest: gocv.NewMat(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.reader()
	log.Printf("Camera opened at source %s", source)
	return s, nil
}

func openDevice(source string) (*gocv.VideoCapture, error) {
	var spec interface{} = source
	if idx, err := strconv.Atoi(source); err == nil {
		spec = idx
	}

	type result struct {
		cam *gocv.VideoCapture
		err error
	}
	ch := make(chan result, 1)
	go func() {
		cam, err := gocv.OpenVideoCapture(spec)
		ch <- result{cam, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: source %s: %v", ErrCameraUnavailable, source, r.err)
		}
		if !r.cam.IsOpened() {
			r.cam.Close()
			return nil, fmt.Errorf("%w: source %s", ErrCameraUnavailable, source)
		}
		return r.cam, nil
	case <-time.After(openTimeout):
		// The open attempt keeps running; free the device as soon as it
		// finishes so a retry can grab it.
		go func() {
			if r := <-ch; r.cam != nil {
				r.cam.Close()
			}
		}()
		return nil, fmt.Errorf("%w: source %s: open timed out", ErrCameraUnavailable, source)
	}
}

type stream struct {
	cam *gocv.VideoCapture

	mu       sync.Mutex
	latest   gocv.Mat
	hasFrame bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// reader pulls frames as fast as the device produces them and overwrites the
// single latest-frame cell. Intermediate frames are dropped on purpose.
func (s *stream) reader() {
	defer close(s.done)

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		if s.cam.Read(&img) && !img.Empty() {
			s.mu.Lock()
			img.CopyTo(&s.latest)
			s.hasFrame = true
			s.mu.Unlock()
		} else {
			// Failed read: camera busy or stream hiccup. Back off briefly
			// instead of spinning.
			time.Sleep(50 * time.Millisecond)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *stream) Read() (gocv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasFrame {
		return gocv.NewMat(), false
	}
	return s.latest.Clone(), true
}

func (s *stream) Release() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
		err = s.cam.Close()
		s.mu.Lock()
		s.latest.Close()
		s.hasFrame = false
		s.mu.Unlock()
		log.Println("Camera resource released")
	})
	return err
}

// Probe checks device indexes [0, max) and returns those that open. Used by
// the camera listing endpoint.
func Probe(max int) []int {
	var found []int
	for i := 0; i < max; i++ {
		cam, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if cam.IsOpened() {
			found = append(found, i)
		}
		cam.Close()
	}
	return found
}
