package model

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindBeauticianQuery(t *testing.T, rawQuery string) (BeauticianQuery, error) {
	t.Helper()
	var q BeauticianQuery
	req := httptest.NewRequest("GET", "/beauticians?"+rawQuery, nil)
	err := binding.Query.Bind(req, &q)
	return q, err
}

func TestBeauticianQueryBinding(t *testing.T) {
	q, err := bindBeauticianQuery(t, "lat=21.1702&lng=72.8311&radius=5")
	require.NoError(t, err)
	require.NotNil(t, q.Lat)
	assert.Equal(t, 21.1702, *q.Lat)
	assert.Equal(t, 5.0, q.RadiusKm)

	_, err = bindBeauticianQuery(t, "location=Vesu")
	assert.NoError(t, err)

	for _, raw := range []string{
		"lat=999&lng=72.8",
		"lat=21.1&lng=-200",
		"lat=NaN&lng=72.8",
		"location=Vesu&radius=-1",
		"location=Vesu&radius=NaN",
	} {
		_, err := bindBeauticianQuery(t, raw)
		assert.Error(t, err, raw)
	}
}
