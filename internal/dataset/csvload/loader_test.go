package csvload

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

const sample = `,name,latitude,longitude,year,month,dayofweek,hour,age,district,cause
0,Jane Doe,39.31,-76.62,2021,January,Monday,10,30,Western,Shooting
1,John Roe,,,2020.0,March,Sunday,23,3,Eastern,Stabbing
`

func TestLoad_ParsesRowsAndKeepsExtraColumns(t *testing.T) {
	recs, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	r := recs[0]
	require.NotNil(t, r.Latitude)
	assert.InDelta(t, 39.31, *r.Latitude, 1e-9)
	assert.Equal(t, 2021, r.Year)
	assert.Equal(t, model.January, r.Month)
	assert.Equal(t, model.Monday, r.DayOfWeek)
	assert.Equal(t, "Western", r.District)
	assert.Equal(t, "Shooting", r.Cause)
	assert.Equal(t, "Jane Doe", r.Extra["name"])
	assert.NotContains(t, r.Extra, "year")

	r = recs[1]
	assert.Nil(t, r.Latitude)
	assert.Nil(t, r.Longitude)
	assert.Equal(t, 2020, r.Year)
	assert.Equal(t, model.Sunday, r.DayOfWeek)
}

func TestLoad_MissingColumnIsSchemaViolation(t *testing.T) {
	_, err := Load(strings.NewReader("latitude,longitude,year\n1,2,2020\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSchemaViolation))
}

func TestLoad_BadFieldReportsRow(t *testing.T) {
	in := `latitude,longitude,year,month,dayofweek,hour,age,district,cause
1,2,2020,January,Monday,1,20,A,B
1,2,2020,Janvier,Monday,1,20,A,B
`
	_, err := Load(strings.NewReader(in))
	var se *model.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Row)
	assert.Equal(t, "month", se.Field)
}

func TestLoad_MissingAgeIsSchemaViolation(t *testing.T) {
	in := `latitude,longitude,year,month,dayofweek,hour,age,district,cause
1,2,2020,January,Monday,1,,A,B
`
	_, err := Load(strings.NewReader(in))
	assert.ErrorIs(t, err, model.ErrSchemaViolation)
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrSchemaViolation)
}

func TestLoad_NonFiniteCoordinatesBecomeNil(t *testing.T) {
	const in = `latitude,longitude,year,month,dayofweek,hour,age,district,cause
NaN,-76.6,2021,May,Monday,10,30,Western,Shooting
39.3,+Inf,2021,May,Monday,10,30,Western,Shooting
nan,-inf,2021,May,Monday,10,30,Western,Shooting
`
	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Nil(t, recs[0].Latitude)
	require.NotNil(t, recs[0].Longitude)
	assert.Nil(t, recs[1].Longitude)
	assert.Nil(t, recs[2].Latitude)
	assert.Nil(t, recs[2].Longitude)
	for _, r := range recs {
		assert.False(t, r.HasCoordinates())
	}
}
