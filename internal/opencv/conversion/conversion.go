package conversion

import (
	"encoding/binary"
	"fmt"
	"math"

	"grainscope/internal/models"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GrayToMat copies an intensity image into a single-channel 8-bit Mat.
func GrayToMat(img *models.Gray, tag string) (*safe.Mat, error) {
	if err := img.Validate(tag); err != nil {
		return nil, err
	}
	return safe.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, img.Pix, tag)
}

// BinaryToMat copies a binary image into a single-channel 8-bit Mat.
func BinaryToMat(img *models.Binary, tag string) (*safe.Mat, error) {
	if err := img.Validate(tag); err != nil {
		return nil, err
	}
	return safe.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, img.Pix, tag)
}

// RGBToMat copies a color image into a three-channel 8-bit Mat. Channel
// order is kept as R,G,B; callers convert to BGR before handing the Mat to
// OpenCV codecs.
func RGBToMat(img *models.RGB, tag string) (*safe.Mat, error) {
	if err := img.Validate(tag); err != nil {
		return nil, err
	}
	return safe.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix, tag)
}

// LabelsToFloatMat converts a label map into a 32-bit float Mat so that
// morphology can run over it. Labels up to 2^24 are represented exactly.
func LabelsToFloatMat(labels *models.LabelMap, tag string) (*safe.Mat, error) {
	if err := labels.Validate(tag); err != nil {
		return nil, err
	}
	values := make([]float32, len(labels.Labels))
	for i, v := range labels.Labels {
		values[i] = float32(v)
	}
	return FloatsToMat(values, labels.Height, labels.Width, tag)
}

// FloatsToMat copies row-major float32 samples into a CV32F Mat.
func FloatsToMat(values []float32, rows, cols int, tag string) (*safe.Mat, error) {
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%w: %d samples for %dx%d in %s", models.ErrInvalidImage, len(values), cols, rows, tag)
	}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.NativeEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV32F, buf, tag)
}

// MatToGray copies a single-channel 8-bit Mat into an intensity image.
func MatToGray(src *safe.Mat) (*models.Gray, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV8UC1, "Mat to gray conversion"); err != nil {
		return nil, err
	}
	mat := src.GetMat()
	return models.GrayFromPix(src.Cols(), src.Rows(), mat.ToBytes())
}

// MatToBinary copies a single-channel 8-bit Mat into a binary image,
// mapping every non-zero sample to Foreground.
func MatToBinary(src *safe.Mat) (*models.Binary, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV8UC1, "Mat to binary conversion"); err != nil {
		return nil, err
	}
	mat := src.GetMat()
	data := mat.ToBytes()
	out, err := models.NewBinary(src.Cols(), src.Rows())
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		if v != models.Background {
			out.Pix[i] = models.Foreground
		}
	}
	return out, nil
}

// MatToRGB copies a three-channel 8-bit Mat into a color image.
func MatToRGB(src *safe.Mat) (*models.RGB, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV8UC3, "Mat to rgb conversion"); err != nil {
		return nil, err
	}
	mat := src.GetMat()
	data := mat.ToBytes()
	if len(data) != src.Rows()*src.Cols()*3 {
		return nil, fmt.Errorf("%w: unexpected buffer length %d", models.ErrInvalidImage, len(data))
	}
	return &models.RGB{Width: src.Cols(), Height: src.Rows(), Pix: data}, nil
}

// MatToFloats copies a CV32F Mat into a row-major slice.
func MatToFloats(src *safe.Mat) ([]float32, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV32F, "Mat to float conversion"); err != nil {
		return nil, err
	}
	rows, cols := src.Rows(), src.Cols()
	mat := src.GetMat()
	out := make([]float32, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[y*cols+x] = mat.GetFloatAt(y, x)
		}
	}
	return out, nil
}

// MatToLabels copies a CV32S label Mat into a label map.
func MatToLabels(src *safe.Mat) (*models.LabelMap, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV32S, "Mat to label conversion"); err != nil {
		return nil, err
	}
	rows, cols := src.Rows(), src.Cols()
	out, err := models.NewLabelMap(cols, rows)
	if err != nil {
		return nil, err
	}
	mat := src.GetMat()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out.Labels[y*cols+x] = mat.GetIntAt(y, x)
		}
	}
	return out, nil
}
