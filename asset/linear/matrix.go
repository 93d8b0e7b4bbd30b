// Package linear provides the small amount of column-major 4x4 matrix and
// quaternion math the asset pipeline needs to compose node-to-scene
// transforms. It is not a general-purpose math library.
package linear

// V3 is a 3-component vector of float32.
type V3 [3]float32

// V4 is a 4-component vector of float32.
type V4 [4]float32

// M4 is a column-major 4x4 matrix of float32, matching glTF's matrix layout.
type M4 [4]V4

// I sets m to the identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var out M4
	for i := range out {
		for j := range out {
			for k := range out {
				out[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = out
}

// FromColumnMajor builds an M4 from a flat, column-major array of 16 values
// as stored in a glTF node's "matrix" property.
func FromColumnMajor(a [16]float32) M4 {
	return M4{
		{a[0], a[1], a[2], a[3]},
		{a[4], a[5], a[6], a[7]},
		{a[8], a[9], a[10], a[11]},
		{a[12], a[13], a[14], a[15]},
	}
}

// Q is a unit quaternion of float32, stored (x, y, z, w) as glTF does.
type Q struct {
	V V3
	W float32
}

// QFromArray builds a Q from glTF's [x,y,z,w] rotation array.
func QFromArray(a [4]float32) Q {
	return Q{V: V3{a[0], a[1], a[2]}, W: a[3]}
}

// ToMatrix converts the quaternion to a rotation-only M4.
func (q Q) ToMatrix() M4 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, yy, zz := x*x2, y*y2, z*z2
	xy, xz, yz := x*y2, x*z2, y*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	var m M4
	m[0] = V4{1 - (yy + zz), xy + wz, xz - wy, 0}
	m[1] = V4{xy - wz, 1 - (xx + zz), yz + wx, 0}
	m[2] = V4{xz + wy, yz - wx, 1 - (xx + yy), 0}
	m[3] = V4{0, 0, 0, 1}
	return m
}

// TRS composes a translation/rotation/scale triple into a single M4, in the
// order glTF mandates: T ⋅ R ⋅ S.
func TRS(translation V3, rotation Q, scale V3) M4 {
	var t, r, s, rs, trs M4
	t.I()
	t[3] = V4{translation[0], translation[1], translation[2], 1}

	r = rotation.ToMatrix()

	s.I()
	s[0][0], s[1][1], s[2][2] = scale[0], scale[1], scale[2]

	rs.Mul(&r, &s)
	trs.Mul(&t, &rs)
	return trs
}
