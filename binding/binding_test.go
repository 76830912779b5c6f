package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var data any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func TestInterpolatePaths(t *testing.T) {
	data := decode(t, `{
		"client": {"name": "Acme Logistics", "employees": 250},
		"products": [{"name": "Shield"}, {"name": "Pulse"}],
		"active": true
	}`)

	assert.Equal(t, "Prepared for Acme Logistics", Interpolate("Prepared for ${client.name}", data))
	assert.Equal(t, "250 seats", Interpolate("${ client.employees } seats", data))
	assert.Equal(t, "Pulse", Interpolate("${products[1].name}", data))
	assert.Equal(t, "true", Interpolate("${active}", data))
}

func TestInterpolateFallback(t *testing.T) {
	data := decode(t, `{"client": {"name": "Acme"}}`)

	assert.Equal(t, "Date: TBD", Interpolate("Date: ${meeting.date|TBD}", data))
	assert.Equal(t, "Acme", Interpolate("${client.name|Unknown}", data))
	assert.Equal(t, "x", Interpolate("${missing|x}", nil))
	assert.Equal(t, "[]", Interpolate("[${missing|}]", data))
}

func TestInterpolateKeepsUnknown(t *testing.T) {
	data := decode(t, `{"a": 1}`)

	assert.Equal(t, "${b}", Interpolate("${b}", data))
	assert.Equal(t, "${a[0]}", Interpolate("${a[0]}", data))
	assert.Equal(t, "no placeholders", Interpolate("no placeholders", data))
}

func TestStrictBinderReportsMissing(t *testing.T) {
	b := &Binder{Data: decode(t, `{"client": {"name": "Acme"}}`), Strict: true}

	out, err := b.Interpolate("${client.name}")
	require.NoError(t, err)
	assert.Equal(t, "Acme", out)

	_, err = b.Interpolate("${client.city} / ${client.zip}")
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "client.city", missing.Path)

	out, err = b.Interpolate("${client.city|Remote}")
	require.NoError(t, err)
	assert.Equal(t, "Remote", out)
}

func TestLookupReturnsRawValue(t *testing.T) {
	b := New(decode(t, `{"products": [{"name": "Shield"}, {"name": "Pulse"}]}`))

	val, err := b.Lookup("products")
	require.NoError(t, err)
	assert.Len(t, val, 2)

	val, err = b.Lookup("services")
	require.NoError(t, err)
	assert.Nil(t, val)

	b.Strict = true
	_, err = b.Lookup("services")
	assert.ErrorAs(t, err, new(*MissingError))
}
