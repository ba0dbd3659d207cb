package fonts

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func init() {
	if err := loadFonts(); err != nil {
		panic(fmt.Sprintf("Failed to load fonts: %v", err))
	}
}

// BannerFont is used for full screen messages.
var BannerFont font.Face

// MenuFont is used by buttons and menu text.
var MenuFont font.Face

// HUDFont is used for the status line drawn over the world.
var HUDFont font.Face

func loadFonts() error {
	const dpi = 72

	mplus, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		return fmt.Errorf("failed to parse banner font: %v", err)
	}
	BannerFont, err = opentype.NewFace(mplus, &opentype.FaceOptions{
		Size:    32,
		DPI:     dpi,
		Hinting: font.HintingVertical,
	})
	if err != nil {
		return fmt.Errorf("failed to create banner font face: %v", err)
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse regular font: %v", err)
	}
	MenuFont = truetype.NewFace(regular, &truetype.Options{
		Size:    20,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	HUDFont = truetype.NewFace(regular, &truetype.Options{
		Size:    12,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})

	return nil
}
