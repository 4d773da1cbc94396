package engine

import (
	"bytes"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/capture"
)

var jpegMagic = []byte{0xFF, 0xD8}

// stubRecognizer reports one face per frame with a fixed feature vector.
type stubRecognizer struct {
	vec []float64
}

func (s *stubRecognizer) Detect(gocv.Mat) []image.Rectangle {
	return []image.Rectangle{image.Rect(10, 10, 60, 60)}
}

func (s *stubRecognizer) Extract(gocv.Mat, image.Rectangle) ([]float64, error) {
	return s.vec, nil
}

func (s *stubRecognizer) Close() error { return nil }

// frameSource serves synthetic frames instead of a real camera.
type frameSource struct{}

func (f *frameSource) Read() (gocv.Mat, bool) {
	return gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3), true
}

func (f *frameSource) Release() error { return nil }

func frameOpener(string) (capture.Source, error) {
	return &frameSource{}, nil
}

func TestNextFramePlaceholderWhenIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	p := NewProcessor(e, e.gallery, nil)

	frame := p.NextFrame()
	if !bytes.HasPrefix(frame, jpegMagic) {
		t.Fatal("placeholder frame is not a JPEG")
	}
}

func TestNextFrameMarksRecognizedFace(t *testing.T) {
	g := testGallery(t)
	e := New(t.TempDir(), g, frameOpener)
	mustStart(t, e, StartOptions{Faculty: "Rao", Subject: "DS", CameraSource: "0"})
	defer e.Stop()

	// The stub vector sits at distance zero from every enrolled encoding;
	// the tie must resolve to the lexicographically smallest label.
	p := NewProcessor(e, g, &stubRecognizer{vec: []float64{0}})

	for i := 0; i < sampleStride; i++ {
		if frame := p.NextFrame(); !bytes.HasPrefix(frame, jpegMagic) {
			t.Fatal("live frame is not a JPEG")
		}
	}

	marked := e.Marked()
	if len(marked) != 1 || marked[0] != "Asha_101" {
		t.Fatalf("Marked = %v, want [Asha_101]", marked)
	}
}

func TestNextFrameWithoutRecognizerStillStreams(t *testing.T) {
	g := testGallery(t)
	e := New(t.TempDir(), g, frameOpener)
	mustStart(t, e, StartOptions{Faculty: "Rao", Subject: "DS", CameraSource: "0"})
	defer e.Stop()

	p := NewProcessor(e, g, nil)
	for i := 0; i < sampleStride+1; i++ {
		if frame := p.NextFrame(); !bytes.HasPrefix(frame, jpegMagic) {
			t.Fatal("frame is not a JPEG")
		}
	}
	if len(e.Marked()) != 0 {
		t.Fatal("marks appeared without a recognizer")
	}
}
