package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ValidateMatForOperation rejects nil, closed or empty Mats.
func ValidateMatForOperation(mat *Mat, operation string) error {
	switch {
	case mat == nil:
		return fmt.Errorf("%s: Mat is nil", operation)
	case !mat.IsValid():
		return fmt.Errorf("%s: Mat %q was already closed", operation, mat.Tag())
	case mat.Empty() || mat.Rows() <= 0 || mat.Cols() <= 0:
		return fmt.Errorf("%s: Mat %q is empty", operation, mat.Tag())
	}
	return nil
}

// ValidateMatType rejects Mats whose element type differs from want.
func ValidateMatType(mat *Mat, want gocv.MatType, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}
	if mat.Type() != want {
		return fmt.Errorf("%s: Mat %q has type %d, want %d", operation, mat.Tag(), int(mat.Type()), int(want))
	}
	return nil
}

// ValidateColorConversion checks that src has the channel count code expects.
func ValidateColorConversion(src *Mat, code gocv.ColorConversionCode) error {
	if err := ValidateMatForOperation(src, "CvtColor"); err != nil {
		return err
	}

	want := 0
	switch code {
	// gocv aliases ColorRGBToBGR to ColorBGRToRGB and ColorGrayToRGB to
	// ColorGrayToBGR, so each pair is a single case value.
	case gocv.ColorBGRToGray, gocv.ColorRGBToGray, gocv.ColorBGRToRGB:
		want = 3
	case gocv.ColorGrayToBGR:
		want = 1
	}
	if want != 0 && src.Channels() != want {
		return fmt.Errorf("CvtColor: Mat %q has %d channels, conversion needs %d", src.Tag(), src.Channels(), want)
	}
	return nil
}
