package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-6

func TestLatLonXYZRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"equator/prime", 0, 0},
		{"north pole", 90, 0},
		{"south pole", -90, 45},
		{"mid lat", 37.5, -122.4},
		{"dateline", 12, 179.9},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y, z := LatLonToXYZ(c.lat, c.lon)
			assert.InDelta(t, 1.0, x*x+y*y+z*z, 1e-9)

			lat, lon := XYZToLatLon(x, y, z)
			assert.InDelta(t, c.lat, lat, epsilon)
			if math.Abs(c.lat) < 89.999 {
				// Longitude is undefined at the poles.
				assert.InDelta(t, normalizeLonDelta(c.lon, lon), 0, epsilon)
			}
		})
	}
}

func normalizeLonDelta(a, b float64) float64 {
	d := a - b
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

func TestAngularDistance(t *testing.T) {
	assert.InDelta(t, 0, AngularDistance(10, 20, 10, 20), epsilon)
	assert.InDelta(t, math.Pi, AngularDistance(0, 0, 0, 180), epsilon)
	assert.InDelta(t, math.Pi/2, AngularDistance(0, 0, 90, 0), epsilon)
}

func TestDirectionOnSphereCoincidentAndAntipodal(t *testing.T) {
	e, n := DirectionOnSphere(10, 20, 10, 20)
	assert.Equal(t, 0.0, e)
	assert.Equal(t, 0.0, n)

	e, n = DirectionOnSphere(0, 0, 0, 180)
	assert.Equal(t, 0.0, e)
	assert.Equal(t, 0.0, n)
}

func TestDirectionOnSphereEastward(t *testing.T) {
	// From (0,0) toward (0,10): due east.
	e, n := DirectionOnSphere(0, 0, 0, 10)
	assert.Greater(t, e, 0.0)
	assert.InDelta(t, 0, n, 1e-3)

	bearing := TangentToBearing(e, n)
	assert.InDelta(t, 90, bearing, 1e-2)
}

func TestDirectionOnSphereNorthward(t *testing.T) {
	e, n := DirectionOnSphere(0, 0, 10, 0)
	assert.InDelta(t, 0, e, 1e-3)
	assert.Greater(t, n, 0.0)

	bearing := TangentToBearing(e, n)
	assert.InDelta(t, 0, bearing, 1e-2)
}

func TestTangentToBearingNormalizesToPositive(t *testing.T) {
	b := TangentToBearing(-1, -1)
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}

func TestRotateTangentVectorPreservesMagnitude(t *testing.T) {
	e, n := RotateTangentVector(1, 0, 37)
	mag := math.Sqrt(e*e + n*n)
	assert.InDelta(t, 1.0, mag, 1e-9)
}

func TestAdvancePositionZeroSpeedUnchanged(t *testing.T) {
	lat, lon := AdvancePosition(12, 34, 0, 0, 1)
	assert.Equal(t, 12.0, lat)
	assert.Equal(t, 34.0, lon)
}

func TestAdvancePositionMovesNorthward(t *testing.T) {
	lat, lon := AdvancePosition(0, 0, 0, 0.1, 1)
	assert.Greater(t, lat, 0.0)
	assert.InDelta(t, 0, lon, 1e-2)
}

func TestAdvancePositionMovesEastward(t *testing.T) {
	lat, lon := AdvancePosition(0, 0, 0.1, 0, 1)
	assert.InDelta(t, 0, lat, 1e-2)
	assert.Greater(t, lon, 0.0)
}
