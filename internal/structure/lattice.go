package structure

import (
	"errors"
	"math"
)

// Lattice holds the three cell vectors as rows, in angstrom.
type Lattice [3][3]float64

// Lengths returns the length of each cell vector.
func (l Lattice) Lengths() [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = math.Sqrt(l[i][0]*l[i][0] + l[i][1]*l[i][1] + l[i][2]*l[i][2])
	}
	return out
}

// Angles returns alpha, beta, gamma in degrees.
func (l Lattice) Angles() [3]float64 {
	lengths := l.Lengths()
	angle := func(a, b int) float64 {
		dot := l[a][0]*l[b][0] + l[a][1]*l[b][1] + l[a][2]*l[b][2]
		cos := dot / (lengths[a] * lengths[b])
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		return math.Acos(cos) * 180 / math.Pi
	}
	return [3]float64{angle(1, 2), angle(0, 2), angle(0, 1)}
}

// Cart converts fractional coordinates to cartesian: c_j = sum_i f_i * L[i][j].
func (l Lattice) Cart(frac [3]float64) [3]float64 {
	var out [3]float64
	for j := 0; j < 3; j++ {
		out[j] = frac[0]*l[0][j] + frac[1]*l[1][j] + frac[2]*l[2][j]
	}
	return out
}

// Frac converts cartesian coordinates back to fractional ones.
func (l Lattice) Frac(cart [3]float64) ([3]float64, error) {
	inv, err := l.inverse()
	if err != nil {
		return [3]float64{}, err
	}
	var out [3]float64
	for j := 0; j < 3; j++ {
		out[j] = cart[0]*inv[0][j] + cart[1]*inv[1][j] + cart[2]*inv[2][j]
	}
	return out, nil
}

func (l Lattice) determinant() float64 {
	return l[0][0]*(l[1][1]*l[2][2]-l[1][2]*l[2][1]) -
		l[0][1]*(l[1][0]*l[2][2]-l[1][2]*l[2][0]) +
		l[0][2]*(l[1][0]*l[2][1]-l[1][1]*l[2][0])
}

func (l Lattice) inverse() (Lattice, error) {
	det := l.determinant()
	if math.Abs(det) < 1e-12 {
		return Lattice{}, errors.New("lattice is singular")
	}
	cof := func(r, c int) float64 {
		r1, r2 := (r+1)%3, (r+2)%3
		c1, c2 := (c+1)%3, (c+2)%3
		return l[r1][c1]*l[r2][c2] - l[r1][c2]*l[r2][c1]
	}
	var inv Lattice
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv[i][j] = cof(j, i) / det
		}
	}
	return inv, nil
}
