package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/riskcore/pkg/model"
)

func TestClassifyWebServer(t *testing.T) {
	c := Classify([]string{"http", "https", "ssh"}, []int{80, 443, 22})

	assert.Equal(t, model.AssetServer, c.Type)
	// 1 base + 2 http + 1 ssh port
	assert.Equal(t, 4, c.Criticality)
	// 80 and 443 are commonly attacked (+30), http service (+20)
	assert.Equal(t, 50.0, c.ExposureScore)
}

func TestClassifyDatabasePrecedence(t *testing.T) {
	// Database detection wins over web detection
	c := Classify([]string{"http", "mysql"}, []int{80, 3306})

	assert.Equal(t, model.AssetDatabase, c.Type)
	// 1 base + 2 http + 3 database, capped at 5
	assert.Equal(t, 5, c.Criticality)
}

func TestClassifyRemoteShellIsServer(t *testing.T) {
	c := Classify([]string{"ssh"}, []int{22})
	assert.Equal(t, model.AssetServer, c.Type)
	assert.Equal(t, 2, c.Criticality)
	assert.Equal(t, 0.0, c.ExposureScore) // 22 is not in the attacked set
}

func TestClassifyDefaultsToWorkstation(t *testing.T) {
	c := Classify(nil, nil)
	assert.Equal(t, model.AssetWorkstation, c.Type)
	assert.Equal(t, 1, c.Criticality)
	assert.Equal(t, 0.0, c.ExposureScore)
}

func TestClassifyRemoteDesktopExposure(t *testing.T) {
	c := Classify(nil, []int{3389})
	// 15 for the attacked port, 25 for remote desktop
	assert.Equal(t, 40.0, c.ExposureScore)
}

func TestClassifyExposureClamped(t *testing.T) {
	c := Classify([]string{"http"}, []int{21, 23, 80, 443, 3389, 5900})
	// 6*15 + 20 + 25 = 135, clamped
	assert.Equal(t, 100.0, c.ExposureScore)
}

func TestClassifyBounds(t *testing.T) {
	inputs := []struct {
		services []string
		ports    []int
	}{
		{nil, nil},
		{[]string{"http"}, nil},
		{[]string{"mysql", "postgres", "http", "ssh"}, []int{21, 22, 23, 80, 443, 3389, 5900}},
		{[]string{"telnet"}, []int{23}},
		{[]string{"database"}, []int{3306, 22}},
	}
	for _, in := range inputs {
		c := Classify(in.services, in.ports)
		assert.GreaterOrEqual(t, c.Criticality, 1)
		assert.LessOrEqual(t, c.Criticality, 5)
		assert.GreaterOrEqual(t, c.ExposureScore, 0.0)
		assert.LessOrEqual(t, c.ExposureScore, 100.0)
		assert.True(t, c.Type.Valid())
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a := Classify([]string{"http", "mysql"}, []int{80, 22})
	b := Classify([]string{"http", "mysql"}, []int{80, 22})
	assert.Equal(t, a, b)
}
