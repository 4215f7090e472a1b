// package bresenham implements an integer line stepper with the
// Bresenham algorithm.
package bresenham

import "image"

// Line steps along a line one pixel at a time. The zero value is
// ready for Reset.
type Line struct {
	// e is the minor axis error, doubled.
	e int
	// major, minor is the line vector, axes swapped when steep.
	major, minor int
	// steep is 1 if the major axis is y.
	steep uint8
}

// Reset the stepper for a line from the origin to the signed
// distance dist. It returns the step direction along each axis, 1
// for negative, and the number of steps to reach dist.
func (l *Line) Reset(dist image.Point) (dirx, diry uint8, steps int) {
	if dist.X < 0 {
		dirx = 1
		dist.X = -dist.X
	}
	if dist.Y < 0 {
		diry = 1
		dist.Y = -dist.Y
	}
	l.steep = 0
	if dist.Y > dist.X {
		l.steep = 1
		dist.X, dist.Y = dist.Y, dist.X
	}
	l.major, l.minor = dist.X, dist.Y
	l.e = 2*l.minor - l.major
	return dirx, diry, l.major
}

// Step advances one pixel and reports whether to move along x and y,
// in the directions reported by Reset.
func (l *Line) Step() (dx, dy uint8) {
	var maj, min uint8 = 1, 0
	if l.e > 0 {
		min = 1
	}
	l.e -= 2 * l.major * int(min)
	l.e += 2 * l.minor
	return (maj &^ l.steep) | (min & l.steep),
		(maj & l.steep) | (min &^ l.steep)
}
