package resources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHelplines(t *testing.T) {
	c := Load()

	assert.Equal(t, "112", c.Helpline(NationalEmergency))
	assert.Equal(t, "181", c.Helpline(WomenHelpline))
	assert.Equal(t, "1930", c.Helpline(CybercrimeHelpline))
	assert.Equal(t, "", c.Helpline("unknown"))
	assert.Len(t, c.Helplines(), 4)
	assert.Len(t, c.SelfCareTips(), 3)
	assert.Contains(t, c.NGOs(), "mumbai")
	assert.Contains(t, c.LegalInfo(), "workplace_harassment")
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Load()

	helplines := c.Helplines()
	helplines[NationalEmergency] = "000"
	tips := c.SelfCareTips()
	tips[0] = "changed"
	numbers := c.EmergencyNumbers()
	numbers["General Emergency Services"]["Police"][0] = "999"

	assert.Equal(t, "112", c.Helpline(NationalEmergency))
	assert.NotEqual(t, "changed", c.SelfCareTips()[0])
	assert.Equal(t, PhoneNumbers{"100"}, c.EmergencyNumbers()["General Emergency Services"]["Police"])
}

func TestPhoneNumbersJSONShape(t *testing.T) {
	single, err := json.Marshal(PhoneNumbers{"112"})
	require.NoError(t, err)
	assert.JSONEq(t, `"112"`, string(single))

	many, err := json.Marshal(PhoneNumbers{"1091", "1291"})
	require.NoError(t, err)
	assert.JSONEq(t, `["1091","1291"]`, string(many))

	assert.Equal(t, "1091, 1291", PhoneNumbers{"1091", "1291"}.String())
}

func TestEmergencyNumbersSerializeDeterministically(t *testing.T) {
	c := Load()

	first, err := json.Marshal(c.EmergencyNumbers())
	require.NoError(t, err)
	second, err := json.Marshal(c.EmergencyNumbers())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"JAGORI":["918800996640","(011) 26692700"]`)
}
