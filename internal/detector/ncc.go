package detector

import (
	"image"
	"math"

	imageInternal "ropebot/internal/image"
)

// NCC - реализация Matcher на чистом Go.
// Статистики окна считаются по интегральным изображениям, числитель по шаблону с вычтенным средним.
type NCC struct{}

type integral struct {
	stride int
	sum    []int64
	sq     []int64
}

func newIntegral(g *image.Gray) integral {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	in := integral{stride: w + 1, sum: make([]int64, (w+1)*(h+1)), sq: make([]int64, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		var rowSum, rowSq int64
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, v := range row {
			rowSum += int64(v)
			rowSq += int64(v) * int64(v)
			i := (y+1)*in.stride + x + 1
			in.sum[i] = in.sum[i-in.stride] + rowSum
			in.sq[i] = in.sq[i-in.stride] + rowSq
		}
	}
	return in
}

func (in integral) window(x, y, w, h int) (int64, int64) {
	a := y*in.stride + x
	b := a + w
	c := (y+h)*in.stride + x
	d := c + w
	return in.sum[d] - in.sum[b] - in.sum[c] + in.sum[a], in.sq[d] - in.sq[b] - in.sq[c] + in.sq[a]
}

// scan вызывает visit для каждой позиции, где корреляция определена
func (NCC) scan(frame, tmpl *image.Gray, visit func(x, y int, score float64)) {
	frame, tmpl = rebase(frame), rebase(tmpl)
	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	if tw == 0 || th == 0 || tw > fw || th > fh {
		return
	}

	n := float64(tw * th)
	var tSum float64
	for y := 0; y < th; y++ {
		for _, v := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw] {
			tSum += float64(v)
		}
	}
	tMean := tSum / n

	centered := make([]float64, tw*th)
	var tNorm2 float64
	for y := 0; y < th; y++ {
		for x, v := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+tw] {
			c := float64(v) - tMean
			centered[y*tw+x] = c
			tNorm2 += c * c
		}
	}
	// однотонный шаблон ни с чем не коррелирует
	if tNorm2 == 0 {
		return
	}

	in := newIntegral(frame)
	count := int64(tw * th)
	for y := 0; y+th <= fh; y++ {
		for x := 0; x+tw <= fw; x++ {
			s, sq := in.window(x, y, tw, th)
			nVar := count*sq - s*s
			if nVar <= 0 {
				continue
			}

			var num float64
			for j := 0; j < th; j++ {
				row := frame.Pix[(y+j)*frame.Stride+x : (y+j)*frame.Stride+x+tw]
				trow := centered[j*tw : j*tw+tw]
				for i, v := range row {
					num += trow[i] * float64(v)
				}
			}

			score := num / math.Sqrt(tNorm2*float64(nVar)/n)
			visit(x, y, math.Max(-1, math.Min(1, score)))
		}
	}
}

// Match возвращает все позиции со значением >= threshold
func (m NCC) Match(frame, tmpl *image.Gray, threshold float64) []Match {
	var matches []Match
	m.scan(frame, tmpl, func(x, y int, score float64) {
		if score >= threshold {
			matches = append(matches, Match{X: x, Y: y, Score: score})
		}
	})
	return matches
}

// Best возвращает позицию с максимальной корреляцией; при равенстве первую в построчном порядке
func (m NCC) Best(frame, tmpl *image.Gray) (Match, bool) {
	best, found := Match{Score: math.Inf(-1)}, false
	m.scan(frame, tmpl, func(x, y int, score float64) {
		if score > best.Score {
			best, found = Match{X: x, Y: y, Score: score}, true
		}
	})
	return best, found
}

// rebase переносит начало изображения в (0, 0), чтобы индексировать Pix напрямую
func rebase(g *image.Gray) *image.Gray {
	if g.Rect.Min == (image.Point{}) {
		return g
	}
	return imageInternal.ToGray(g)
}
