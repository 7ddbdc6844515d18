package docjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	RideID string  `json:"rideId"`
	Price  float64 `json:"price,omitempty"`
	Skip   string  `json:"-"`
}

func TestSplit_KeepsUnmodelledMembers(t *testing.T) {
	var r record
	extra, err := Split([]byte(`{"rideId":"R3","seats":2,"rideDate":"2024-01-01","Skip":"x"}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "R3", r.RideID)
	assert.Equal(t, map[string]interface{}{"seats": 2.0, "rideDate": "2024-01-01", "Skip": "x"}, extra)
}

func TestSplit_CaseInsensitiveKnownKeys(t *testing.T) {
	var r record
	extra, err := Split([]byte(`{"RIDEID":"R1","price":3}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "R1", r.RideID)
	assert.Nil(t, extra)
}

func TestSplit_RejectsNonObject(t *testing.T) {
	var r record
	_, err := Split([]byte(`[1,2]`), &r)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	out, err := Merge(record{RideID: "R3"}, map[string]interface{}{"seats": 2, "rideId": "ignored"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rideId":"R3","seats":2}`, string(out))

	out, err = Merge(record{RideID: "R4"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rideId":"R4"}`, string(out))
}

func TestSplitThenMerge_RoundTrip(t *testing.T) {
	in := `{"rideId":"R5","price":9.5,"pickup":{"lat":23.8,"lng":90.4},"tags":["a","b"]}`

	var r record
	extra, err := Split([]byte(in), &r)
	require.NoError(t, err)
	out, err := Merge(r, extra)
	require.NoError(t, err)

	assert.JSONEq(t, in, string(out))
}

func TestWithout(t *testing.T) {
	extra := map[string]interface{}{"_id": "x", "seats": 2}
	assert.Equal(t, map[string]interface{}{"seats": 2}, Without(extra, "_id"))
	assert.Contains(t, extra, "_id", "input must not be mutated")
	assert.Nil(t, Without(map[string]interface{}{"_id": "x"}, "_id"))

	var none map[string]interface{}
	b, _ := json.Marshal(Without(none))
	assert.Equal(t, "null", string(b))
}
