// Package vision is the pluggable face-matching capability: locate face
// regions in a frame and turn each region into a feature vector comparable by
// Euclidean distance. The attendance engine only depends on the Recognizer
// interface; the default implementation runs on OpenCV.
package vision

import (
	"fmt"
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// Recognizer detects face regions and extracts their feature vectors.
type Recognizer interface {
	Detect(img gocv.Mat) []image.Rectangle
	Extract(img gocv.Mat, region image.Rectangle) ([]float64, error)
	Close() error
}

const embedSize = 112

// OpenCVRecognizer pairs a Haar cascade detector with an ONNX face embedding
// network (SFace or compatible, 112x112 input).
type OpenCVRecognizer struct {
	classifier gocv.CascadeClassifier

	// gocv.Net is not safe for concurrent Forward calls.
	mu  sync.Mutex
	net gocv.Net

	minFaceSize int
}

// NewOpenCVRecognizer loads the cascade file and the embedding model.
func NewOpenCVRecognizer(cascadePath, modelPath string) (*OpenCVRecognizer, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load face cascade %q", cascadePath)
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		classifier.Close()
		return nil, fmt.Errorf("failed to load embedding model %q", modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &OpenCVRecognizer{
		classifier:  classifier,
		net:         net,
		minFaceSize: 40,
	}, nil
}

// Detect returns the face bounding boxes found in img, dropping regions too
// small to embed reliably.
func (r *OpenCVRecognizer) Detect(img gocv.Mat) []image.Rectangle {
	rects := r.classifier.DetectMultiScale(img)
	out := rects[:0]
	for _, rect := range rects {
		if rect.Dx() >= r.minFaceSize && rect.Dy() >= r.minFaceSize {
			out = append(out, rect)
		}
	}
	return out
}

// Extract crops region out of img, runs the embedding network and returns the
// L2-normalized feature vector.
func (r *OpenCVRecognizer) Extract(img gocv.Mat, region image.Rectangle) ([]float64, error) {
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	region = region.Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("face region outside frame")
	}

	face := img.Region(region)
	defer face.Close()

	blob := gocv.BlobFromImage(face, 1.0/255.0, image.Pt(embedSize, embedSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.net.SetInput(blob, "")
	prob := r.net.Forward("")
	defer prob.Close()

	raw, err := prob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read embedding output: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("embedding model produced no output")
	}

	vec := make([]float64, len(raw))
	var norm float64
	for i, v := range raw {
		vec[i] = float64(v)
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (r *OpenCVRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.net.Close()
	return r.classifier.Close()
}
