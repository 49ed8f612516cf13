package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentTQuantile(t *testing.T) {
	assert := assert.New(t)

	// Table values for the two-sided 95% critical point.
	assert.InDelta(12.706, StudentTQuantile(0.975, 1), 1e-3)
	assert.InDelta(2.776, StudentTQuantile(0.975, 4), 1e-3)
	assert.InDelta(2.042, StudentTQuantile(0.975, 30), 1e-3)

	assert.True(math.IsNaN(StudentTQuantile(0.975, 0)))
	assert.True(math.IsNaN(StudentTQuantile(1, 5)))
	assert.True(math.IsNaN(StudentTQuantile(0, 5)))
}

func TestNormal(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(1.959964, NormalQuantile(0.975), 1e-6)
	assert.InDelta(0.5, NormalCDF(0), 1e-12)
	assert.True(math.IsNaN(NormalQuantile(1)))
}

func TestValidLevel(t *testing.T) {
	assert := assert.New(t)

	assert.True(ValidLevel(0.95))
	assert.False(ValidLevel(0))
	assert.False(ValidLevel(1))
	assert.False(ValidLevel(math.NaN()))
}
