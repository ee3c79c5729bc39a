package blurhash

import "math"

// Factor is one colour component of the cosine expansion, in linear light.
type Factor struct {
	R, G, B float64
}

func (f *Factor) scale(v float64) {
	f.R *= v
	f.G *= v
	f.B *= v
}

// basisTable returns cos(π·i·x/size) for every frequency i in [0, n) and
// sample x in [0, size), laid out as table[i*size+x]. Encoder and decoder
// both take their basis values from here so the two directions agree bit
// for bit.
func basisTable(n, size int) []float64 {
	table := make([]float64, n*size)
	step := math.Pi / float64(size)
	for i := 0; i < n; i++ {
		row := table[i*size : (i+1)*size]
		for x := range row {
			row[x] = math.Cos(step * float64(i*x))
		}
	}
	return table
}

// analyse projects a linear-light RGB buffer (3 floats per pixel, row-major)
// onto the first nx × ny cosine basis functions. The DC term is the plain
// average; AC terms carry the factor 2 of the type-II DCT, so synthesis is
// a direct weighted sum.
func analyse(rgb []float64, w, h, nx, ny int) []Factor {
	cosX := basisTable(nx, w)
	cosY := basisTable(ny, h)
	factors := make([]Factor, nx*ny)
	scale := 1 / float64(w*h)

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			norm := 2.0
			if i == 0 && j == 0 {
				norm = 1
			}
			var f Factor
			for y := 0; y < h; y++ {
				fy := cosY[j*h+y]
				row := rgb[y*w*3 : (y+1)*w*3]
				for x := 0; x < w; x++ {
					basis := norm * cosX[i*w+x] * fy
					f.R += basis * row[x*3]
					f.G += basis * row[x*3+1]
					f.B += basis * row[x*3+2]
				}
			}
			f.scale(scale)
			factors[j*nx+i] = f
		}
	}
	return factors
}

// synthesise evaluates the expansion at every pixel of a w × h NRGBA
// buffer and writes opaque sRGB output.
func synthesise(factors []Factor, nx, ny int, pix []uint8, stride, w, h int) {
	cosX := basisTable(nx, w)
	cosY := basisTable(ny, h)

	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			var r, g, b float64
			for j := 0; j < ny; j++ {
				fy := cosY[j*h+y]
				for i := 0; i < nx; i++ {
					basis := cosX[i*w+x] * fy
					f := factors[j*nx+i]
					r += f.R * basis
					g += f.G * basis
					b += f.B * basis
				}
			}
			pix[off] = LinearToSRGB(r)
			pix[off+1] = LinearToSRGB(g)
			pix[off+2] = LinearToSRGB(b)
			pix[off+3] = 255
			off += 4
		}
	}
}
