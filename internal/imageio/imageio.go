// Package imageio decodes micrographs from disk into the arrays the pipeline
// consumes and writes rendered overlays back out. It is used by the command
// line driver only.
package imageio

import (
	"fmt"
	"path/filepath"
	"strings"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Supported reports whether path has an image extension the driver accepts.
func Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Image is a decoded micrograph in both color and grayscale form.
type Image struct {
	Path string
	RGB  *models.RGB
	Gray *models.Gray
}

// Load decodes path and derives an RGB view and a grayscale view of it.
func Load(path string) (*Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("%w: cannot decode %s", models.ErrInvalidImage, path)
	}

	bgr, err := safe.NewMatFromMat(mat, "load_bgr")
	if err != nil {
		return nil, fmt.Errorf("failed to wrap decoded Mat: %w", err)
	}
	defer bgr.Close()

	rgbMat, err := safe.NewMat(bgr.Rows(), bgr.Cols(), gocv.MatTypeCV8UC3, "load_rgb")
	if err != nil {
		return nil, fmt.Errorf("failed to create rgb Mat: %w", err)
	}
	defer rgbMat.Close()
	if err := safe.ValidateColorConversion(bgr, gocv.ColorBGRToRGB); err != nil {
		return nil, err
	}
	gocv.CvtColor(bgr.GetMat(), rgbMat.Ptr(), gocv.ColorBGRToRGB)

	grayMat, err := safe.NewMat(bgr.Rows(), bgr.Cols(), gocv.MatTypeCV8UC1, "load_gray")
	if err != nil {
		return nil, fmt.Errorf("failed to create gray Mat: %w", err)
	}
	defer grayMat.Close()
	gocv.CvtColor(bgr.GetMat(), grayMat.Ptr(), gocv.ColorBGRToGray)

	rgb, err := conversion.MatToRGB(rgbMat)
	if err != nil {
		return nil, err
	}
	gray, err := conversion.MatToGray(grayMat)
	if err != nil {
		return nil, err
	}

	return &Image{Path: path, RGB: rgb, Gray: gray}, nil
}

// SaveRGB encodes img to path; the format follows the extension.
func SaveRGB(path string, img *models.RGB) error {
	rgbMat, err := conversion.RGBToMat(img, "save_rgb")
	if err != nil {
		return fmt.Errorf("failed to create rgb Mat: %w", err)
	}
	defer rgbMat.Close()

	bgr, err := safe.NewMat(rgbMat.Rows(), rgbMat.Cols(), gocv.MatTypeCV8UC3, "save_bgr")
	if err != nil {
		return fmt.Errorf("failed to create bgr Mat: %w", err)
	}
	defer bgr.Close()
	if err := safe.ValidateColorConversion(rgbMat, gocv.ColorRGBToBGR); err != nil {
		return err
	}
	gocv.CvtColor(rgbMat.GetMat(), bgr.Ptr(), gocv.ColorRGBToBGR)

	if ok := gocv.IMWrite(path, bgr.GetMat()); !ok {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}
