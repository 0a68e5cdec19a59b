package openeew

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPrefix(t *testing.T) {
	hour := time.Date(2023, 2, 6, 1, 17, 35, 0, time.UTC)
	got := RecordPrefix("MX", hour)
	assert.Equal(t, "records/country_code=mx/year=2023/month=02/day=06/hour=01/", got)
}

func TestRecordPrefixConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	hour := time.Date(2023, 2, 5, 22, 0, 0, 0, loc) // 04:00 UTC next day
	got := RecordPrefix("mx", hour)
	assert.Equal(t, "records/country_code=mx/year=2023/month=02/day=06/hour=04/", got)
}

func TestDecodeRecords(t *testing.T) {
	ndjson := `{"device_id":"d001","cloud_t":1675645055.5,"x":[0.1,0.2],"y":[0.0,0.1],"z":[0.9,1.0],"sr":31.25}

{"device_id":"d002","cloud_t":1675645056.0,"x":[0.3],"y":[0.3],"z":[0.3]}
`

	records, err := DecodeRecords(strings.NewReader(ndjson))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "d001", records[0].DeviceID)
	assert.InDelta(t, 1675645055.5, records[0].Timestamp, 1e-9)
	assert.Equal(t, []float64{0.1, 0.2}, records[0].X)
	assert.InDelta(t, 31.25, records[0].SampleRate, 1e-9)

	// sr omitted falls back to the device default.
	assert.InDelta(t, 31.25, records[1].SampleRate, 1e-9)
}

func TestDecodeRecordsMalformedLine(t *testing.T) {
	ndjson := `{"device_id":"d001","cloud_t":1.0,"x":[],"y":[],"z":[]}
{not json}
`

	_, err := DecodeRecords(strings.NewReader(ndjson))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeRecordsEmpty(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}
