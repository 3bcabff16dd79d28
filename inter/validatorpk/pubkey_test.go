package validatorpk

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	require := require.New(t)

	exp := PubKey{
		Type: Types.Secp256k1,
		Raw:  common.FromHex("45b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1"),
	}

	got, err := FromString("c045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
	require.NoError(err)
	require.Equal(exp, got)

	got, err = FromString("0xc045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1")
	require.NoError(err)
	require.Equal(exp, got)

	_, err = FromString("")
	require.Error(err)

	_, err = FromString("0x")
	require.Error(err)

	_, err = FromString("-")
	require.Error(err)
}

func TestStringRoundtrip(t *testing.T) {
	require := require.New(t)

	pk := PubKey{
		Type: Types.Secp256k1,
		Raw:  []byte{0x01, 0x02, 0x03},
	}
	require.Equal("0xc0010203", pk.String())

	got, err := FromString(pk.String())
	require.NoError(err)
	require.Equal(pk, got)
}

func TestBytes(t *testing.T) {
	require := require.New(t)

	pk := PubKey{Type: 0x01, Raw: []byte{0x02, 0x03}}
	require.Equal([]byte{0x01, 0x02, 0x03}, pk.Bytes())
}

func TestEmpty(t *testing.T) {
	require := require.New(t)

	require.True(PubKey{}.Empty())
	require.False(PubKey{Type: Types.Secp256k1, Raw: []byte{0x01}}.Empty())
}

func TestCopy(t *testing.T) {
	require := require.New(t)

	pk := PubKey{Type: Types.Secp256k1, Raw: []byte{0x01, 0x02}}
	cp := pk.Copy()
	require.Equal(pk, cp)

	cp.Raw[0] = 0xff
	require.Equal(byte(0x01), pk.Raw[0])
}

func TestJSON(t *testing.T) {
	require := require.New(t)

	exp := PubKey{Type: Types.Secp256k1, Raw: []byte{0x0a, 0x0b}}
	raw, err := json.Marshal(&exp)
	require.NoError(err)
	require.Equal(`"0xc00a0b"`, string(raw))

	var got PubKey
	require.NoError(json.Unmarshal(raw, &got))
	require.Equal(exp, got)
}
