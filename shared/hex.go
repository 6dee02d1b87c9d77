package shared

import (
	"encoding/hex"
	"encoding/json"
)

// HexBytes is a byte slice that is represented as a hex string in JSON.
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) (err error) {
	var hexString string
	if err = json.Unmarshal(data, &hexString); err != nil {
		return
	}
	*h, err = hex.DecodeString(hexString)
	return
}
