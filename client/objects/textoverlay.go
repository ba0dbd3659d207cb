package objects

import (
	"image/color"
	"strings"

	"github.com/cbodonnell/slide/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// TextOverlayObject draws a line of text centred on the screen.
type TextOverlayObject struct {
	*BaseObject

	text string
}

func NewTextOverlayObject(id string, text string, zIndex int) *TextOverlayObject {
	return &TextOverlayObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: zIndex}),
		text:       text,
	}
}

func (o *TextOverlayObject) SetText(text string) {
	o.text = text
}

func (o *TextOverlayObject) Draw(screen *ebiten.Image) {
	if o.text == "" {
		return
	}
	t := strings.ToUpper(o.text)
	f := fonts.BannerFont
	bounds, _ := font.BoundString(f, t)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx())/2-float64(bounds.Max.X>>6)/2, float64(screen.Bounds().Dy())/2-float64(bounds.Max.Y>>6)/2)
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(screen, t, f, op)
}
