// encode-gallery walks a dataset directory laid out as dataset/<person>/*.jpg,
// extracts one face embedding per image and writes the gallery artifact the
// attendance service loads at startup. Folder names become identity labels;
// use the "<Name>_<roll>" convention so QR roll-number check-in can resolve
// them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/gallery"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/vision"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
}

func main() {
	dataset := flag.String("dataset", "dataset", "directory with one sub-directory of reference images per person")
	out := flag.String("out", "encodings.bin", "output artifact path")
	cascade := flag.String("cascade", "haarcascade_frontalface_default.xml", "face cascade file")
	model := flag.String("model", "face_embedder.onnx", "face embedding model")
	flag.Parse()

	rec, err := vision.NewOpenCVRecognizer(*cascade, *model)
	if err != nil {
		log.Fatal(err)
	}
	defer rec.Close()

	entries, err := os.ReadDir(*dataset)
	if err != nil {
		log.Fatal("read dataset directory: ", err)
	}

	var names []string
	var encodings [][]float64

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		person := entry.Name()
		fmt.Printf("Processing images for: %s\n", person)

		images, err := os.ReadDir(filepath.Join(*dataset, person))
		if err != nil {
			log.Printf("  skipping %s: %v", person, err)
			continue
		}

		for _, imgEntry := range images {
			if imgEntry.IsDir() || !imageExts[strings.ToLower(filepath.Ext(imgEntry.Name()))] {
				continue
			}
			path := filepath.Join(*dataset, person, imgEntry.Name())

			vec, err := encodeImage(rec, path)
			if err != nil {
				log.Printf("  - WARNING: %s: %v", imgEntry.Name(), err)
				continue
			}
			names = append(names, person)
			encodings = append(encodings, vec)
			fmt.Printf("  - Encoded %s\n", imgEntry.Name())
		}
	}

	if err := gallery.WriteArtifact(*out, names, encodings); err != nil {
		log.Fatal("write artifact: ", err)
	}

	people := map[string]bool{}
	for _, n := range names {
		people[n] = true
	}
	fmt.Printf("Encoded %d faces for %d people into %s\n", len(encodings), len(people), *out)
}

// encodeImage extracts the embedding of the single largest face in the image.
func encodeImage(rec *vision.OpenCVRecognizer, path string) ([]float64, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("could not read image")
	}
	defer img.Close()

	rects := rec.Detect(img)
	if len(rects) == 0 {
		return nil, fmt.Errorf("no face found")
	}

	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}
	return rec.Extract(img, best)
}
