package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the absolute tolerance used for orthonormality and degeneracy checks.
const Tolerance = 1e-9

// Mat3 is a row-major 3x3 matrix. It is a comparable value type so pose and transform sets
// can hold orientations by copy; the algebra runs on gonum's r3.Mat.
type Mat3 [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// FromColumns builds the matrix whose columns are x, y and z in that order.
func FromColumns(x, y, z r3.Vec) Mat3 {
	return Mat3{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

// Col returns column j.
func (m Mat3) Col(j int) r3.Vec {
	return r3.Vec{X: m[0][j], Y: m[1][j], Z: m[2][j]}
}

// Row returns row i.
func (m Mat3) Row(i int) r3.Vec {
	return r3.Vec{X: m[i][0], Y: m[i][1], Z: m[i][2]}
}

// Mat returns a gonum copy of m for use with the r3 and mat packages.
func (m Mat3) Mat() *r3.Mat {
	return r3.NewMat([]float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// FromMat copies a 3x3 gonum matrix into a Mat3. It panics if a is not 3x3.
func FromMat(a mat.Matrix) Mat3 {
	if r, c := a.Dims(); r != 3 || c != 3 {
		panic(mat.ErrShape)
	}
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a.At(i, j)
		}
	}
	return out
}

// Mul returns m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var out r3.Mat
	out.Mul(m.Mat(), n.Mat())
	return FromMat(&out)
}

// MulVec returns m·v.
func (m Mat3) MulVec(v r3.Vec) r3.Vec {
	return m.Mat().MulVec(v)
}

// T returns the transpose of m.
func (m Mat3) T() Mat3 {
	return FromMat(m.Mat().T())
}

// Det returns the determinant of m.
func (m Mat3) Det() float64 {
	return m.Mat().Det()
}

// EqualApprox reports whether every element of m and n differs by at most tol.
func (m Mat3) EqualApprox(n Mat3, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !scalar.EqualWithinAbs(m[i][j], n[i][j], tol) {
				return false
			}
		}
	}
	return true
}

// IsOrthonormal reports whether the columns of m are unit length, mutually orthogonal
// and right-handed, within tol.
func (m Mat3) IsOrthonormal(tol float64) bool {
	if !m.T().Mul(m).EqualApprox(Identity(), tol) {
		return false
	}
	return scalar.EqualWithinAbs(m.Det(), 1, tol)
}

// Orthonormalize rebuilds a right-handed orthonormal frame from the first and third columns
// of m: z is normalized, y = z × x, and x = y × z.
func (m Mat3) Orthonormalize() (Mat3, error) {
	z, err := Normalize(m.Col(2))
	if err != nil {
		return Mat3{}, fmt.Errorf("z column: %w", err)
	}
	y, err := Normalize(r3.Cross(z, m.Col(0)))
	if err != nil {
		return Mat3{}, fmt.Errorf("x column parallel to z: %w", err)
	}
	x := r3.Cross(y, z)
	return FromColumns(x, y, z), nil
}

// String implements fmt.Stringer.
func (m Mat3) String() string {
	return fmt.Sprintf("[%.6g %.6g %.6g; %.6g %.6g %.6g; %.6g %.6g %.6g]",
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2])
}
