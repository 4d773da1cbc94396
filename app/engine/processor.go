package engine

import (
	"image"
	"image/color"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/gallery"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/vision"
)

// Recognition runs on every sampleStride-th frame at detectScale resolution;
// in between, the last known boxes are redrawn on fresh frames. Matches the
// tuning the recognition threshold was validated with.
const (
	sampleStride = 5
	detectScale  = 0.5
)

var (
	colorPresent = color.RGBA{G: 255, A: 255}
	colorUnknown = color.RGBA{R: 255, A: 255}
	colorText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Processor turns camera frames into marks and annotated JPEGs for the live
// video feed. Detection or matching failures on a frame are logged and
// skipped; the feed keeps running.
type Processor struct {
	engine     *Engine
	gallery    *gallery.Gallery
	recognizer vision.Recognizer

	mu        sync.Mutex
	counter   int
	lastRects []image.Rectangle
	lastNames []string
}

// NewProcessor wires the recognition pipeline to an engine.
func NewProcessor(e *Engine, g *gallery.Gallery, r vision.Recognizer) *Processor {
	return &Processor{engine: e, gallery: g, recognizer: r}
}

// NextFrame produces the next JPEG for the live feed: the current camera
// frame annotated with face boxes and labels, or a placeholder when no
// session is active or the camera has no frame yet.
func (p *Processor) NextFrame() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.engine.Active() {
		return placeholderJPEG("Camera Off - Start a Session")
	}

	frame, ok := p.engine.currentFrame()
	if !ok {
		return placeholderJPEG("Waiting for camera...")
	}
	defer frame.Close()

	p.counter++
	if p.counter%sampleStride == 0 {
		p.recognize(frame)
	}
	p.annotate(&frame)

	return encodeJPEG(frame)
}

// recognize runs detection and matching on a downsampled copy of frame and
// feeds confirmed identities into the engine.
func (p *Processor) recognize(frame gocv.Mat) {
	if p.recognizer == nil {
		return
	}
	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(frame, &small, image.Pt(0, 0), detectScale, detectScale, gocv.InterpolationLinear)

	p.lastRects = p.lastRects[:0]
	p.lastNames = p.lastNames[:0]

	for _, rect := range p.recognizer.Detect(small) {
		name := gallery.Unknown

		vec, err := p.recognizer.Extract(small, rect)
		if err != nil {
			log.Printf("Face extraction error: %v", err)
		} else if matched, _, ok := p.gallery.Match(vec); ok {
			name = matched
			if _, err := p.engine.Mark(name); err != nil {
				log.Printf("Mark error for %s: %v", name, err)
			}
		}

		// Scale the box back to full-frame coordinates for display.
		inv := 1.0 / detectScale
		p.lastRects = append(p.lastRects, image.Rect(
			int(float64(rect.Min.X)*inv), int(float64(rect.Min.Y)*inv),
			int(float64(rect.Max.X)*inv), int(float64(rect.Max.Y)*inv)))
		p.lastNames = append(p.lastNames, name)
	}
}

// annotate draws the last known detections onto frame. Green means the person
// is credited this session, red means unknown or not yet marked.
func (p *Processor) annotate(frame *gocv.Mat) {
	for i, rect := range p.lastRects {
		name := p.lastNames[i]

		boxColor, status := colorUnknown, "UNKNOWN"
		if p.engine.IsMarked(name) {
			boxColor, status = colorPresent, "PRESENT"
		}

		gocv.Rectangle(frame, rect, boxColor, 3)
		label := image.Rect(rect.Min.X, rect.Max.Y-60, rect.Max.X, rect.Max.Y)
		gocv.Rectangle(frame, label, boxColor, -1)
		gocv.PutText(frame, name, image.Pt(rect.Min.X+6, rect.Max.Y-35),
			gocv.FontHersheyDuplex, 0.7, colorText, 2)
		gocv.PutText(frame, status, image.Pt(rect.Min.X+6, rect.Max.Y-10),
			gocv.FontHersheyDuplex, 0.6, colorText, 2)
	}
}

func placeholderJPEG(message string) []byte {
	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()
	gocv.PutText(&blank, message, image.Pt(50, 240), gocv.FontHersheySimplex, 1, colorText, 2)
	return encodeJPEG(blank)
}

func encodeJPEG(img gocv.Mat) []byte {
	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		log.Printf("Frame encode error: %v", err)
		return nil
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out
}
